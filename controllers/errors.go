package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/services"
	"github.com/meinhoongagan/smart-clinic/utils"
	"github.com/rs/zerolog"
)

var errBadBody = services.InvalidArgument("Invalid request body")

// respondError renders classified service errors. notFound is the status
// the route uses for KindNotFound. Anything unclassified is handed back to
// the app error handler.
func respondError(c *fiber.Ctx, err error, notFound int) error {
	var serr *services.Error
	if !errors.As(err, &serr) {
		return err
	}
	switch serr.Kind {
	case services.KindUnauthenticated:
		return utils.Fail(c, fiber.StatusUnauthorized, serr.Message, nil)
	case services.KindForbidden:
		return utils.Fail(c, fiber.StatusForbidden, serr.Message, nil)
	case services.KindNotFound:
		return utils.Fail(c, notFound, serr.Message, nil)
	case services.KindConflict, services.KindInvalidArgument:
		return utils.Fail(c, fiber.StatusBadRequest, serr.Message, nil)
	case services.KindValidation:
		return utils.Fail(c, fiber.StatusBadRequest, serr.Message, serr.Fields)
	case services.KindUnavailable:
		return utils.Fail(c, fiber.StatusServiceUnavailable, serr.Message, nil)
	}
	return err
}

// ErrorHandler is the fiber app error handler. Internal failures are logged
// in full and answered with a generic message.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			msg := fe.Message
			if fe.Code == fiber.StatusNotFound {
				msg = "Resource not found"
			}
			return utils.Fail(c, fe.Code, msg, nil)
		}
		if services.KindOf(err) != services.KindInternal {
			return respondError(c, err, fiber.StatusNotFound)
		}
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("unhandled error")
		return utils.Fail(c, fiber.StatusInternalServerError, utils.InternalErrorMessage, nil)
	}
}

func uintParam(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, services.InvalidArgument("Invalid " + name)
	}
	return uint(v), nil
}

package router

import (
	"errors"
	"net/http"

	"github.com/ecopanier/backend/pkg/errorx"
	"github.com/ecopanier/backend/pkg/xcontext"
	"github.com/gin-gonic/gin"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{Code: 0, Data: data}
}

func newErrorResponse(err error) response {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return response{
			Code:  int64(errx.Code),
			Error: errx.Message,
		}
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}
}

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ctx := xcontext.WithHTTPRequest(router.ctx, gctx.Request)

		var err error
		for _, middleware := range router.middlewares {
			if ctx, err = middleware(ctx); err != nil {
				gctx.JSON(http.StatusOK, newErrorResponse(err))
				return
			}
		}

		var req Request
		switch method {
		case http.MethodGet:
			err = gctx.ShouldBindQuery(&req)
		default:
			err = gctx.ShouldBindJSON(&req)
		}
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
			gctx.JSON(http.StatusOK, newErrorResponse(
				errorx.New(errorx.BadRequest, "Cannot bind the request")))
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			gctx.JSON(http.StatusOK, newErrorResponse(err))
			return
		}

		gctx.JSON(http.StatusOK, newResponse(resp))
	}
}

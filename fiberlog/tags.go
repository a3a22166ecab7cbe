package fiberlog

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Available logger tags
const (
	TagPid      = "pid"
	TagStatus   = "status"
	TagLatency  = "latency"
	TagMethod   = "method"
	TagPath     = "path"
	TagIP       = "ip"
	TagHost     = "host"
	TagUA       = "ua"
	TagReferer  = "referer"
	TagProtocol = "protocol"
	TagBody     = "body"
	TagResBody  = "res_body"
	TagQuery    = "query"
	RequestID   = "request_id"
)

// FuncTag extracts a field value from the request context
type FuncTag func(c *fiber.Ctx, d *data) interface{}

type data struct {
	pid   int
	start time.Time
	end   time.Time
}

var funcTagMap = map[string]FuncTag{
	TagPid: func(c *fiber.Ctx, d *data) interface{} {
		return strconv.Itoa(d.pid)
	},
	TagStatus: func(c *fiber.Ctx, d *data) interface{} {
		return c.Response().StatusCode()
	},
	TagLatency: func(c *fiber.Ctx, d *data) interface{} {
		return d.end.Sub(d.start).String()
	},
	TagMethod: func(c *fiber.Ctx, d *data) interface{} {
		return c.Method()
	},
	TagPath: func(c *fiber.Ctx, d *data) interface{} {
		return c.Path()
	},
	TagIP: func(c *fiber.Ctx, d *data) interface{} {
		return c.IP()
	},
	TagHost: func(c *fiber.Ctx, d *data) interface{} {
		return c.Hostname()
	},
	TagUA: func(c *fiber.Ctx, d *data) interface{} {
		return string(c.Request().Header.UserAgent())
	},
	TagReferer: func(c *fiber.Ctx, d *data) interface{} {
		return string(c.Request().Header.Referer())
	},
	TagProtocol: func(c *fiber.Ctx, d *data) interface{} {
		return c.Protocol()
	},
	TagBody: func(c *fiber.Ctx, d *data) interface{} {
		return string(c.Body())
	},
	TagResBody: func(c *fiber.Ctx, d *data) interface{} {
		return string(c.Response().Body())
	},
	TagQuery: func(c *fiber.Ctx, d *data) interface{} {
		return string(c.Request().URI().QueryString())
	},
	RequestID: func(c *fiber.Ctx, d *data) interface{} {
		return string(c.Response().Header.Peek(fiber.HeaderXRequestID))
	},
}

// getFuncTagMap selects tag functions enabled in config
func getFuncTagMap(cfg Config, d *data) map[string]FuncTag {
	ftm := make(map[string]FuncTag, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		if fn, ok := funcTagMap[tag]; ok {
			ftm[tag] = fn
		}
	}
	return ftm
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/offerlookup/offer-backend/api/middleware"
	"github.com/offerlookup/offer-backend/utils"
)

func corsOption(ctx context.Context, conf Configuration) cors.Config {
	logger := utils.LoggerFromContext(ctx)
	allowedOrigins := []string{}
	for _, s := range strings.Split(conf.CorsAllowedOrigins, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		parsedUrl, err := url.Parse(s)
		switch {
		case err != nil:
			logger.Error("Failed to parse an allowed origin for CORS. Requests made from the browser from this url to the API will be rejected.",
				"url", s)
		case !slices.Contains([]string{"http", "https"}, parsedUrl.Scheme):
			logger.Error(
				fmt.Sprintf("The url %s does not contain a scheme (http or https), so it cannot be used for CORS.", s),
				"url", s)
		default:
			u := url.URL{
				Scheme: parsedUrl.Scheme,
				Host:   parsedUrl.Host,
			}
			allowedOrigins = append(allowedOrigins, u.String())
		}
	}

	if conf.Env == "development" {
		allowedOrigins = append(allowedOrigins,
			"http://localhost:3000", "http://localhost:5173")
	}

	config := cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{
			http.MethodOptions, http.MethodHead, http.MethodGet,
			http.MethodPost, http.MethodPut,
		},
		AllowHeaders:     []string{"Authorization", "Content-Type", "baggage", "sentry-trace"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		// no browser app configured, cross origin requests are all refused
		config.AllowOriginFunc = func(string) bool { return false }
	}
	return config
}

func InitRouterMiddlewares(ctx context.Context, conf Configuration) *gin.Engine {
	if conf.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := utils.LoggerFromContext(ctx)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(cors.New(corsOption(ctx, conf)))
	r.Use(middleware.NewLogging(logger,
		middleware.WithDefaultLevel(conf.RequestLoggingLevel),
		middleware.WithIgnorePath([]string{"/liveness", "/metrics"}),
	))
	r.Use(utils.StoreLoggerInContextMiddleware(logger))

	return r
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/snapfield/sf-order/config"
	adminapp_photographer "github.com/snapfield/sf-order/internal/module/adminapp/photographer"
	adminapp_settlement "github.com/snapfield/sf-order/internal/module/adminapp/settlement"
	customerapp_gallery "github.com/snapfield/sf-order/internal/module/customerapp/gallery"
	"github.com/snapfield/sf-order/internal/module/customerapp/midtrans"
	customerapp_order "github.com/snapfield/sf-order/internal/module/customerapp/order"
	"github.com/snapfield/sf-order/internal/module/customerapp/pricing"
	"github.com/snapfield/sf-order/internal/pkg/jwt"
	internalMiddleare "github.com/snapfield/sf-order/internal/pkg/middleware"
	"github.com/snapfield/sf-order/internal/pkg/session"
	"github.com/snapfield/sf-order/internal/pkg/signedurl"
	"github.com/snapfield/sf-order/pkg/applogger"
	"github.com/snapfield/sf-order/pkg/gctasks"
	"github.com/snapfield/sf-order/pkg/kafka"
	"github.com/snapfield/sf-order/pkg/mailer"
	"github.com/snapfield/sf-order/pkg/middleware"
	"github.com/snapfield/sf-order/pkg/monitoring"
	"github.com/snapfield/sf-order/pkg/postgresql"
	"github.com/snapfield/sf-order/pkg/pubsub"
	"github.com/snapfield/sf-order/pkg/redis"
	"github.com/snapfield/sf-order/pkg/server"
	"github.com/snapfield/sf-order/pkg/validator"
)

var c *config.Config

func init() {
	c = config.Get()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := applogger.GetLogrus()

	mon := monitoring.NewOpenTelemetry(
		c.Application.Name,
		c.Application.Environment,
		c.GCP.ProjectID,
	)

	mon.Start(ctx)

	validate := validator.Get()

	hc := http.DefaultClient

	jsonWebToken := jwt.NewJSONWebToken(c.JWT.PrivateKey, c.JWT.PublicKey)

	psqldb := postgresql.GetDatabase()
	if err := psqldb.Ping(); err != nil {
		logger.WithContext(ctx).WithError(err).Error()
	}

	publisher := pubsub.PublisherFromConfluentKafkaProducer(logger, kafka.NewProducer())

	rc := redis.GetClient()
	if err := rc.Ping(context.Background()).Err(); err != nil {
		logger.WithContext(ctx).WithError(err).Error()
	}

	cloudTask := gctasks.NewGCTasks(logger, c.GCP.ProjectID, c.GCP.TasksLocation, c.GCP.ServiceAccount)

	mail := mailer.NewBrevoMailer(c.Brevo.BaseURL, c.Brevo.APIKey, c.Brevo.FromName, c.Brevo.FromEmail, logger, hc)

	downloadSigner := signedurl.NewSigner(c.Order.DownloadSignSecret)

	settlementLocation, err := time.LoadLocation(c.Settlement.Timezone)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Fatal("invalid settlement timezone")
	}

	tiers := make([]pricing.Tier, len(c.PricingTier))
	for k, t := range c.PricingTier {
		tiers[k] = pricing.Tier{
			Threshold:          t.Threshold,
			DiscountPercentage: t.DiscountPercentage,
			TierName:           t.TierName,
		}
	}
	pricingTable, err := pricing.NewTable(tiers)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Fatal("invalid pricing tier table")
	}

	sess := session.NewRedisSessionStore(logger, rc)

	customerSessionMiddleware := internalMiddleare.NewCustomerSessionMiddleware(jsonWebToken, sess)
	adminSessionMiddleware := internalMiddleare.NewAdminSessionMiddleware(jsonWebToken, sess)

	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(c.Application.Name),
		middleware.HTTPResponseTraceInjection,
		middleware.NewHTTPRequestLogger(logger, c.Application.Debug, http.StatusInternalServerError).Middleware,
	)

	galleryRepo := customerapp_gallery.NewGalleryRepository(logger, psqldb)
	photoRepo := customerapp_gallery.NewPhotoRepository(logger, psqldb)
	photographerRepo := adminapp_photographer.NewPhotographerRepository(logger, psqldb)
	midtransRepo := midtrans.NewMidtransRepository(c.Midtrans.BaseURL, c.Midtrans.BasicAuthKey, logger, hc)

	// customer's app
	customerappGalleryUseCase := customerapp_gallery.NewGalleryUseCase(customerapp_gallery.GalleryUseCaseProperty{
		Logger:            logger,
		Timeout:           c.Application.Timeout,
		BasePhotoPrice:    c.Order.BasePhotoPrice,
		PricingTable:      pricingTable,
		GalleryRepository: galleryRepo,
		PhotoRepository:   photoRepo,
	})
	customerapp_gallery.InitHTTPHandler(router, validate, customerappGalleryUseCase)

	customerappOrderRepo := customerapp_order.NewOrderRepository(logger, psqldb)
	customerappOrderItemRepo := customerapp_order.NewItemRepository(logger, psqldb)
	customerappTransactionDetailRepo := customerapp_order.NewTransactionDetailRepository(logger, psqldb)
	customerappOrderUseCase := customerapp_order.NewOrderUseCase(customerapp_order.OrderUseCaseProperty{
		Logger:                      logger,
		Timeout:                     c.Application.Timeout,
		BaseURL:                     c.Application.BaseURL,
		AbandonAfter:                c.Order.AbandonAfter,
		DownloadWindow:              c.Order.DownloadWindow,
		BasePhotoPrice:              c.Order.BasePhotoPrice,
		GatewayFlatFee:              c.Order.GatewayFlatFee,
		PricingTable:                pricingTable,
		GalleryRepository:           galleryRepo,
		PhotoRepository:             photoRepo,
		PhotographerRepository:      photographerRepo,
		OrderRepository:             customerappOrderRepo,
		ItemRepository:              customerappOrderItemRepo,
		TransactionDetailRepository: customerappTransactionDetailRepo,
		MidtransRepository:          midtransRepo,
		Publisher:                   publisher,
		CloudTask:                   cloudTask,
		Mailer:                      mail,
		DownloadSigner:              downloadSigner,
	})
	customerapp_order.InitHTTPHandler(router, customerSessionMiddleware, validate, customerappOrderUseCase)

	// admin's app
	adminappPhotographerUseCase := adminapp_photographer.NewPhotographerUseCase(adminapp_photographer.PhotographerUseCaseProperty{
		Logger:                 logger,
		Timeout:                c.Application.Timeout,
		PhotographerRepository: photographerRepo,
	})
	adminapp_photographer.InitHTTPHandler(router, adminSessionMiddleware, validate, adminappPhotographerUseCase)

	adminappEarningsRepo := adminapp_settlement.NewEarningsRepository(logger, psqldb)
	adminappSettlementRepo := adminapp_settlement.NewSettlementRepository(logger, psqldb)
	adminappSettlementUseCase := adminapp_settlement.NewSettlementUseCase(adminapp_settlement.SettlementUseCaseProperty{
		Logger:               logger,
		Timeout:              c.Application.Timeout,
		Location:             settlementLocation,
		EarningsRepository:   adminappEarningsRepo,
		SettlementRepository: adminappSettlementRepo,
		Publisher:            publisher,
	})
	adminapp_settlement.InitHTTPHandler(router, adminSessionMiddleware, validate, adminappSettlementUseCase)

	handler := middleware.SetChain(
		router,
		cors.New(cors.Options{
			AllowedOrigins:   c.CORS.AllowedOrigins,
			AllowedMethods:   c.CORS.AllowedMethods,
			AllowedHeaders:   c.CORS.AllowedHeaders,
			ExposedHeaders:   c.CORS.ExposedHeaders,
			MaxAge:           c.CORS.MaxAge,
			AllowCredentials: c.CORS.AllowCredentials,
		}).Handler,
	)

	srv := &server.Server{
		Server: http.Server{
			Addr:    fmt.Sprintf(":%d", c.Application.Port),
			Handler: handler,
		},
		Logger: logger,
	}

	go func() {
		srv.ListenAndServe()
	}()

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	<-sigterm

	srv.Shutdown(ctx)
	publisher.Close()
	cloudTask.Close()
	psqldb.Close()
	rc.Close()
	mon.Stop(ctx)
}

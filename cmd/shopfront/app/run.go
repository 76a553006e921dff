package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/chilin89117/shopfront/configs"
	"github.com/chilin89117/shopfront/internal/adapter/cache"
	shophttp "github.com/chilin89117/shopfront/internal/adapter/http"
	"github.com/chilin89117/shopfront/internal/adapter/http/middleware"
	"github.com/chilin89117/shopfront/internal/adapter/kafka"
	"github.com/chilin89117/shopfront/internal/adapter/mail"
	"github.com/chilin89117/shopfront/internal/adapter/payment"
	"github.com/chilin89117/shopfront/internal/adapter/queue"
	"github.com/chilin89117/shopfront/internal/adapter/repo"
	"github.com/chilin89117/shopfront/internal/invoice"
	"github.com/chilin89117/shopfront/internal/logging"
	"github.com/chilin89117/shopfront/internal/upload"
	"github.com/chilin89117/shopfront/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile)
	log := logging.New("app")

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	cancel()

	log.Info("shopfront: starting up")

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// infra
	userRepo := repo.NewMySQLUserRepo(db)
	productRepo := repo.NewMySQLProductRepo(db)
	cartRepo := repo.NewMySQLCartRepo(db)
	orderRepo := repo.NewMySQLOrderRepo(db)

	sessions := cache.NewRedisSessionStore(rdb, cfg.Session.TTL)
	statuses := cache.NewRedisStatusCache(rdb, 24*time.Hour)

	images, err := upload.NewImageStore(cfg.Uploads.Dir)
	if err != nil {
		return nil, nil, err
	}
	artifacts, err := invoice.NewFSStore(cfg.Invoice.Dir)
	if err != nil {
		return nil, nil, err
	}
	invoices := invoice.NewMaterializer(artifacts, invoice.NewPDFRenderer(images))

	mailer, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		return nil, nil, err
	}

	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey, 10*time.Second)

	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	// register queue-handler (order confirmation mail)
	if err := setupQueue(ch, mailer); err != nil {
		return nil, nil, err
	}

	// register kafka-listener (payment processor events)
	kafkaCancel, err := setupKafkaListener(cfg, orderRepo, statuses)
	if err != nil {
		return nil, nil, err
	}

	// usecases
	authUC := usecase.NewAuth(userRepo, sessions, mailer, usecase.AuthConfig{
		ResetSecret: cfg.Security.ResetSecret,
		Issuer:      cfg.Security.Issuer,
		ResetTTL:    cfg.Security.ResetTTL,
		ResetURL:    cfg.Security.ResetURL,
	})
	catalogUC := usecase.NewCatalog(productRepo, cartRepo, cfg.Catalog.PageSize, cfg.Catalog.AdminPageSize)
	cartUC := usecase.NewCart(cartRepo, productRepo)
	checkoutUC := usecase.NewCheckout(cartRepo, orderRepo, gateway, producer, statuses, cfg.Stripe.Currency)
	ordersUC := usecase.NewOrders(orderRepo, statuses)

	// handlers + router + middleware
	sh := shophttp.NewShopHandler(catalogUC, cartUC, checkoutUC, ordersUC, invoices)
	ah := shophttp.NewAuthHandler(authUC, cfg.Session.CookieName, cfg.Session.TTL)
	adm := shophttp.NewAdminHandler(catalogUC, images)
	sa := middleware.NewSessionAuth(sessions, cfg.Session.CookieName)
	router := shophttp.NewRouter(sh, ah, adm, sa, images.Dir())

	cleanup := func() {
		kafkaCancel()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp091.Channel, mailer usecase.MailSender) error {
	h := queue.NewOrderPlacedHandler(mailer)

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register("order.placed.q", queue.JSONHandler[usecase.OrderPlacedMsg]{HandleFunc: h.HandlePlaced})

	return router.Start()
}

func setupKafkaListener(cfg configs.Config, orders usecase.OrderRepo, statuses usecase.StatusCache) (context.CancelFunc, error) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return nil, err
	}

	h := kafka.NewPaymentEventHandler(orders, statuses)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.Topic}, h.Handle)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("kafka").Error("consumer stopped", "err", err)
		}
	}()
	return cancel, nil
}

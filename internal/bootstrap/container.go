package bootstrap

import (
	"context"
	"log"

	"companion-counselling-be/internal/config"
	"companion-counselling-be/internal/controller"
	"companion-counselling-be/internal/handler"
	"companion-counselling-be/internal/pkg/logger"
	"companion-counselling-be/internal/pkg/mailer"
	"companion-counselling-be/internal/pkg/recommender"
	"companion-counselling-be/internal/pkg/serverutils"
	"companion-counselling-be/internal/repository/memory"
	"companion-counselling-be/internal/repository/unitofwork"
	"companion-counselling-be/internal/service"
	"companion-counselling-be/internal/websocket"
	"companion-counselling-be/pkg/videotoken"

	pktNats "companion-counselling-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	BookingController        controller.IBookingController
	SessionController        controller.ISessionController
	NotificationController   controller.INotificationController
	RecommendationController controller.IRecommendationController
	RealtimeHandler          *handler.RealtimeHandler

	// JwtMiddleware authenticates every /api route.
	JwtMiddleware fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	ReaperService   service.IReaperService
	IngestService   service.IIngestService
	WebSocketHub    *websocket.Hub

	// NatsSubscriber is nil when NATS_URL is empty or unreachable.
	NatsSubscriber *pktNats.Subscriber

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	issuer, err := videotoken.NewIssuer(cfg.Video.AppID, cfg.Video.AppSecret, cfg.Video.TokenTTL)
	if err != nil {
		return nil, err
	}

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			sysLogger,
		)
	} else {
		log.Println("[INFO] SMTP_HOST not set, booking emails disabled")
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 2.5 Infrastructure
	// NATS
	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.NatsSubscriber = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// Redis
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.RealtimeLogPath)
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Notification.EventTopic, pubSub)

	lifecycleService := service.NewLifecycleService(
		uowFactory,
		issuer,
		service.NewRandomRoomIDGenerator(),
		publisherService,
		service.SystemClock,
		sysLogger,
	)
	notificationService := service.NewNotificationService(
		uowFactory,
		publisherService,
		service.SystemClock,
		sysLogger,
	)

	var scorer service.ConsultantRecommender
	if cfg.Recommender.Script != "" {
		scorer = recommender.New(cfg.Recommender.Command, []string{cfg.Recommender.Script}, cfg.Recommender.Timeout)
	}
	recommendationService := service.NewRecommendationService(
		uowFactory,
		scorer,
		memory.NewRecommendationCache(cfg.Recommender.CacheTTL),
		sysLogger,
	)

	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Notification.EventTopic,
		uowFactory,
		c.WebSocketHub,
		forwarder,
		emailService,
		wsLogger,
	)
	c.ReaperService = service.NewReaperService(uowFactory, cfg.Video.SessionMaxAge, service.SystemClock, sysLogger)
	c.IngestService = service.NewIngestService(notificationService, sysLogger)

	// 4. Controllers
	c.JwtMiddleware = serverutils.NewJwtMiddleware(cfg.Auth.JWTSecret)
	c.BookingController = controller.NewBookingController(lifecycleService)
	c.SessionController = controller.NewSessionController(lifecycleService)
	c.NotificationController = controller.NewNotificationController(notificationService)
	c.RecommendationController = controller.NewRecommendationController(recommendationService)
	c.RealtimeHandler = handler.NewRealtimeHandler(c.WebSocketHub, wsLogger)

	return c, nil
}

// Close releases broker and cache connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

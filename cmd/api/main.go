package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"devport-api/internal/config"
	"devport-api/internal/db"
	"devport-api/internal/email"
	apihttp "devport-api/internal/http"
	"devport-api/internal/repository"
	"devport-api/internal/service"

	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// pendingGrace mantiene los OTP vencidos un rato mas para distinguir "expired" de "not found".
const pendingGrace = time.Hour

type stores struct {
	users   repository.UserRepository
	pending repository.PendingVerificationRepository
	purger  service.ExpiredVerificationPurger
	close   func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store connect", zap.Error(err), zap.String("driver", cfg.StoreDriver))
	}
	defer st.close()

	redisClient, err := db.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory limiters", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		// Redis tiene expiracion nativa: los OTP pendientes viven ahi y no hace falta barrer.
		st.pending = repository.NewRedisPendingVerificationRepository(redisClient, pendingGrace)
		st.purger = nil
	}
	limiters := buildLimiters(redisClient)

	emailSender := buildEmailSender(cfg, logger)

	creds := service.NewCredentialStore(st.users, cfg.BcryptCost)
	otpSvc := service.NewOTPService(logger, st.users, st.pending, emailSender, cfg.OTPTTL)
	resetSvc := service.NewPasswordResetService(logger, st.users, creds, emailSender, cfg.ResetCodeTTL)
	userSvc := service.NewUserService(logger, st.users, creds, otpSvc)
	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)

	if st.purger != nil {
		go service.RunVerificationSweeper(ctx, logger, st.purger, 10*time.Minute, pendingGrace)
	}

	userHandler := apihttp.NewUserHandler(logger, userSvc, otpSvc, resetSvc, jwtSvc)
	router := apihttp.NewRouter(logger, userHandler, apihttp.AuthGuard(jwtSvc, userSvc, logger), limiters)
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Fatal("trusted proxies", zap.Error(err))
	}

	server := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		})(router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("store", cfg.StoreDriver),
		zap.Duration("token_ttl", jwtSvc.TTL()),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		users := repository.NewMongoUserRepository(database)
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = db.DisconnectMongo(client)
			return nil, err
		}
		pending := repository.NewMongoPendingVerificationRepository(database)
		if err := pending.EnsureIndexes(ctx, pendingGrace); err != nil {
			_ = db.DisconnectMongo(client)
			return nil, err
		}
		return &stores{
			users:   users,
			pending: pending,
			close: func() {
				if err := db.DisconnectMongo(client); err != nil {
					logger.Warn("mongo disconnect", zap.Error(err))
				}
			},
		}, nil
	default:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.DatabaseAutoMigrate {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		pending := repository.NewPgPendingVerificationRepository(pool)
		return &stores{
			users:   repository.NewPgUserRepository(pool),
			pending: pending,
			purger:  pending,
			close:   pool.Close,
		}, nil
	}
}

func buildLimiters(client *redis.Client) apihttp.RateLimiters {
	if client == nil {
		return apihttp.RateLimiters{
			SendOTP:        service.NewMemoryRateLimiter(service.SendOTPPolicy),
			VerifyOTP:      service.NewMemoryRateLimiter(service.VerifyOTPPolicy),
			ForgotPassword: service.NewMemoryRateLimiter(service.ForgotPasswordPolicy),
		}
	}
	return apihttp.RateLimiters{
		SendOTP:        service.NewRedisRateLimiter(client, service.SendOTPPolicy),
		VerifyOTP:      service.NewRedisRateLimiter(client, service.VerifyOTPPolicy),
		ForgotPassword: service.NewRedisRateLimiter(client, service.ForgotPasswordPolicy),
	}
}

// buildEmailSender prefiere Brevo, luego SMTP; sin ninguno los envios fallan con 500.
func buildEmailSender(cfg *config.Config, logger *zap.Logger) email.Sender {
	if cfg.BrevoAPIKey != "" {
		sender, err := email.NewBrevoSender(cfg.BrevoBaseURL, cfg.BrevoAPIKey, cfg.EmailFrom, cfg.EmailFromName)
		if err == nil {
			return sender
		}
		logger.Warn("brevo sender init failed", zap.Error(err))
	}
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom, cfg.EmailFromName, cfg.SMTPUseTLS)
		if err == nil {
			return sender
		}
		logger.Warn("smtp sender init failed", zap.Error(err))
	}
	logger.Warn("email sender not configured")
	return email.NewDisabledSender("email sender not configured")
}

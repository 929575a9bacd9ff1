package main

import (
	"outreach-gateway/internal/api"
	"outreach-gateway/internal/apollo"
	"outreach-gateway/internal/config"
	"outreach-gateway/internal/database"
	"outreach-gateway/internal/logger"
	"outreach-gateway/internal/mailer"
	"outreach-gateway/internal/secrets"
	"outreach-gateway/internal/store"
	"outreach-gateway/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.New(cfg.Env, cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	templateStore := store.NewTemplateStore(db)
	logStore := store.NewLogStore(db)
	userStore := store.NewUserStore(db)
	settingsStore := store.NewSettingsStore(db)

	box, err := secrets.New(cfg.EncSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize secrets")
	}

	transport := mailer.NewSMTPTransport(smtpSettings(cfg, settingsStore, box), log)

	hub := ws.NewHub(log)
	go hub.Run()

	dispatcher := mailer.NewDispatcher(transport, log)
	dispatcher.OnOutcome = hub.BroadcastOutcome

	apolloClient := apollo.NewClient(cfg, log)
	if !apolloClient.Configured() {
		log.Warn().Msg("APOLLO_API_KEY is not set, enrichment endpoints will fail")
	}

	emailHandler := api.NewEmailHandler(transport, dispatcher, logStore, settingsStore, box, cfg, log)
	fileHandler := api.NewFileHandler(apolloClient, cfg, log)
	apolloHandler := api.NewApolloHandler(apolloClient, log)
	templateHandler := api.NewTemplateHandler(templateStore, logStore, log)
	userHandler := api.NewUserHandler(userStore, box, cfg, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(api.CORS())
	router.MaxMultipartMemory = cfg.MaxUploadSize

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "outreach-gateway"})
	})
	router.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	apiGroup := router.Group("/api")
	{
		email := apiGroup.Group("/email")
		{
			email.POST("/send", emailHandler.SendEmail)
			email.POST("/send-bulk", emailHandler.SendBulk)
			email.POST("/send-personalized-bulk", emailHandler.SendPersonalizedBulk)
			email.POST("/preview-personalized", emailHandler.PreviewPersonalized)
			email.POST("/bulk-send", emailHandler.BulkSendCSV)
			email.POST("/test", emailHandler.TestEmail)
			email.GET("/validate-config", emailHandler.ValidateConfig)
			email.GET("/template-guide", emailHandler.TemplateGuide)
			email.GET("/config", emailHandler.GetSMTPConfig)
			email.POST("/config", emailHandler.SaveSMTPConfig)
		}

		files := apiGroup.Group("/files")
		{
			files.POST("/upload", fileHandler.Upload)
			files.POST("/preview", fileHandler.Preview)
			files.POST("/process-and-enrich", fileHandler.ProcessAndEnrich)
			files.POST("/export", fileHandler.Export)
			files.GET("/mapping-guide", fileHandler.MappingGuide)
		}

		apolloGroup := apiGroup.Group("/apollo")
		{
			apolloGroup.POST("/search-people", apolloHandler.SearchPeople)
			apolloGroup.POST("/search-organizations", apolloHandler.SearchOrganizations)
			apolloGroup.POST("/enrich-person", apolloHandler.EnrichPerson)
			apolloGroup.POST("/enrich-people-bulk", apolloHandler.EnrichPeopleBulk)
			apolloGroup.POST("/enrich-organization", apolloHandler.EnrichOrganization)
			apolloGroup.POST("/enrich-organizations-bulk", apolloHandler.EnrichOrganizationsBulk)
			apolloGroup.GET("/usage", apolloHandler.Usage)
		}

		apiGroup.GET("/templates", templateHandler.ListTemplates)
		apiGroup.POST("/templates", templateHandler.SaveTemplate)
		apiGroup.GET("/logs", templateHandler.ListLogs)

		user := apiGroup.Group("/user")
		{
			user.POST("/register", userHandler.Register)
			user.POST("/login", userHandler.Login)

			authed := user.Group("", api.RequireAuth(cfg.JWTSecret))
			authed.GET("/config", userHandler.GetConfig)
			authed.POST("/config", userHandler.SaveConfig)
		}
	}

	log.Info().Str("port", cfg.Port).Msg("starting outreach gateway")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// smtpSettings prefers the saved configuration and falls back to the
// environment until one is saved through the API.
func smtpSettings(cfg *config.Config, settingsStore *store.SettingsStore, box *secrets.Box) mailer.Settings {
	if saved, err := settingsStore.Read(); err == nil {
		pass, err := box.Open(saved.Pass)
		if err == nil {
			return mailer.Settings{
				Host:    saved.Host,
				Port:    saved.Port,
				Secure:  saved.Secure,
				User:    saved.User,
				Pass:    pass,
				From:    saved.From,
				ReplyTo: saved.ReplyTo,
			}
		}
	}
	return mailer.Settings{
		Host:    cfg.SMTPHost,
		Port:    cfg.SMTPPort,
		Secure:  cfg.SMTPPort == 465,
		User:    cfg.SMTPUser,
		Pass:    cfg.SMTPPass,
		From:    cfg.SMTPFrom,
		ReplyTo: cfg.SMTPReplyTo,
	}
}

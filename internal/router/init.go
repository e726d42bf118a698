package router

import (
	app "github.com/promanhq/proman/internal/application"
	"github.com/promanhq/proman/internal/container"
	pginfra "github.com/promanhq/proman/internal/infrastructure/postgres"
	handlers "github.com/promanhq/proman/internal/interface/http"
	"github.com/promanhq/proman/internal/router/modules"
	"github.com/promanhq/proman/pkg/helpers"
	"github.com/promanhq/proman/pkg/mailer"
)

// InitModules builds the repositories, services, and handlers from the
// container singletons and registers every feature module with the
// registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	tasks := pginfra.NewTaskRepository(pool)
	notifs := pginfra.NewNotificationRepository(pool)
	convs := pginfra.NewConversationRepository(pool)

	container.SetUserRepo(users)

	var verifier app.Mailer
	if mg := container.GetMailgun(); mg != nil {
		verifier = mailer.NewVerificationSender(mg)
	}

	authSvc := app.NewAuthService(users, verifier, container.GetJWT(), logger, helpers.SystemClock)
	userSvc := app.NewUserService(users, notifs, logger, container.GetES(), cfg.ESUsersIndex)
	taskSvc := app.NewTaskService(tasks, users, notifs, logger,
		container.GetRabbitPub(), container.GetGCS(), cfg.GCSBucket, helpers.SystemClock)
	chatSvc := app.NewChatbotService(convs, container.GetLLM(), container.GetChatLimiter(), logger)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger)))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger)))
	r.Add(modules.NewTaskModule(handlers.NewTaskHandler(taskSvc, logger)))
	r.Add(modules.NewChatbotModule(handlers.NewChatbotHandler(chatSvc, logger)))
}

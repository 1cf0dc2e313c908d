package workspace

import (
	"fmt"

	sessionhttp "workly-web/internal/session/adapter/http"
	"workly-web/internal/shared/apiclient"
	"workly-web/internal/shared/logger"
	"workly-web/internal/workspace/adapter/backend"
	workspacehttp "workly-web/internal/workspace/adapter/http"
	"workly-web/internal/workspace/config"
	"workly-web/internal/workspace/usecase"

	"github.com/gofiber/fiber/v2"
)

// WorkspaceModule wires the organization, project and issue views.
type WorkspaceModule struct {
	usecase *usecase.WorkspaceUsecase
	handler *workspacehttp.WorkspaceHTTPHandler
}

// NewWorkspaceModule creates the module. cookie is the credential cookie
// cleared when the API rejects a session.
func NewWorkspaceModule(api *apiclient.Client, cfg *config.Config, cookie sessionhttp.CredentialCookie, landingPath string, log logger.Logger) (*WorkspaceModule, error) {
	if api == nil {
		return nil, fmt.Errorf("workspace module requires an API client")
	}
	if log == nil {
		log = logger.Default()
	}

	uc, err := usecase.NewWorkspaceUsecase(
		backend.NewOrganizationClient(api),
		backend.NewProjectClient(api),
		backend.NewIssueClient(api),
		cfg,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace usecase: %w", err)
	}

	return &WorkspaceModule{
		usecase: uc,
		handler: workspacehttp.NewWorkspaceHTTPHandler(uc, cookie, landingPath, log),
	}, nil
}

// RegisterRoutes registers the workspace views with the provided router
func (wm *WorkspaceModule) RegisterRoutes(router fiber.Router) {
	wm.handler.RegisterRoutes(router)
}

// Usecase returns the workspace usecase
func (wm *WorkspaceModule) Usecase() *usecase.WorkspaceUsecase {
	return wm.usecase
}

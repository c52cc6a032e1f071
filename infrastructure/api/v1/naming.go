package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/dagforge"
	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/naming"
	"github.com/helixml/dagforge/infrastructure/api/middleware"
	"github.com/helixml/dagforge/infrastructure/api/v1/dto"
)

// NamingRouter handles the naming rule endpoints.
type NamingRouter struct {
	client *dagforge.Client
	logger *slog.Logger
}

// NewNamingRouter creates a new NamingRouter.
func NewNamingRouter(client *dagforge.Client) *NamingRouter {
	return &NamingRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for naming rule endpoints.
func (r *NamingRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.Get)
	router.Put("/", r.Save)

	return router
}

// Get handles GET /api/v1/naming-rule. Data is null when no rule is saved.
func (r *NamingRouter) Get(w http.ResponseWriter, req *http.Request) {
	rule, err := r.client.NamingRules.Active(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var resp dto.NamingRuleResponse
	if rule != nil {
		data := ruleToDTO(*rule)
		resp.Data = &data
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Save handles PUT /api/v1/naming-rule.
func (r *NamingRouter) Save(w http.ResponseWriter, req *http.Request) {
	var body dto.NamingRuleRequest
	if err := decodeJSON(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	tokens := make([]service.NamingTokenParams, len(body.Tokens))
	for i, t := range body.Tokens {
		tokens[i] = service.NamingTokenParams{Type: t.Type, Value: t.Value}
	}

	saved, err := r.client.NamingRules.Save(req.Context(), service.NamingRuleParams{
		Tokens:    tokens,
		Separator: body.Separator,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := ruleToDTO(saved)
	middleware.WriteJSON(w, http.StatusOK, dto.NamingRuleResponse{Data: &data})
}

func ruleToDTO(rule naming.Rule) dto.NamingRule {
	tokens := make([]dto.NamingToken, 0, len(rule.Tokens()))
	for _, t := range rule.Tokens() {
		tokens = append(tokens, dto.NamingToken{Type: string(t.Kind()), Value: t.Value()})
	}
	return dto.NamingRule{
		Tokens:    tokens,
		Separator: rule.Separator(),
		Pattern:   rule.String(),
		UpdatedAt: rule.UpdatedAt(),
	}
}

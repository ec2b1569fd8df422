package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 2. Profile questionnaire
// ============================================================

func profileReloadHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/profile/reload")
		defer span.End()

		app := AppFromContext(ctx)
		if err := app.LoadProfile(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.Snapshot())
	}
}

func profileFieldsHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/profile/form/fields")
		defer span.End()

		var changes map[string]any
		if err := decodeJSON(r, &changes); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		app := AppFromContext(ctx)
		if err := app.ApplyProfileFields(changes); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.ProfileForm())
	}
}

func profileAddRowHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/profile/form/rows/{field}")
		defer span.End()

		field := chi.URLParam(r, "field")
		span.SetAttributes(attribute.String("form.field", field))

		app := AppFromContext(ctx)
		index, err := app.AddProfileRow(field)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.Header().Set("X-Row-Index", strconv.Itoa(index))
		writeJSON(w, http.StatusCreated, app.ProfileForm())
	}
}

func profileRemoveRowHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/profile/form/rows/{field}/{index}")
		defer span.End()

		field := chi.URLParam(r, "field")
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "index must be an integer")
			return
		}

		app := AppFromContext(ctx)
		if err := app.RemoveProfileRow(field, index); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.ProfileForm())
	}
}

func profileStepHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/profile/form/step")
		defer span.End()

		var req struct {
			Step int `json:"step"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("form.step", req.Step))

		app := AppFromContext(ctx)
		if err := app.GoToStep(req.Step); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.ProfileForm())
	}
}

func profileSubmitHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/profile/form/submit")
		defer span.End()

		app := AppFromContext(ctx)
		if _, err := app.SaveProfile(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.Snapshot())
	}
}

func participationHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/profile/participation")
		defer span.End()

		app := AppFromContext(ctx)
		p, err := app.ToggleParticipation(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Bool("profile.participating", p.IsParticipating))
		writeJSON(w, http.StatusOK, app.Snapshot())
	}
}

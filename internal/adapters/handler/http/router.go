package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(measureHandler *MeasureHandler, ballotHandler *BallotHandler, voterHandler *VoterHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/measures", func(r chi.Router) {
			r.Post("/", measureHandler.CreateMeasure)
			r.Get("/", measureHandler.ListMeasures)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", measureHandler.GetMeasure)

				r.Post("/session", measureHandler.OpenSession)
				r.Get("/session/status", measureHandler.SessionStatus)
				r.Post("/session/close", measureHandler.CloseSession)

				r.Post("/ballots", ballotHandler.CastBallot)
				r.Get("/ballots", ballotHandler.ListBallots)
				r.Get("/tally", ballotHandler.Tally)
			})
		})

		r.Route("/voters", func(r chi.Router) {
			r.Post("/", voterHandler.Register)
			r.Get("/{id}", voterHandler.GetVoter)
			r.Patch("/{id}/status", voterHandler.SetStatus)
			r.Get("/national-id/{nationalId}", voterHandler.GetVoterByNationalID)
			r.Get("/national-id/{nationalId}/eligibility", voterHandler.Eligibility)
		})
	})

	return r
}

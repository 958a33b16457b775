package server

import "net/http"

func NewMux(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/ingest", h.HandleIngest)
	mux.HandleFunc("POST /api/analyze", h.HandleAnalyze)
	mux.HandleFunc("POST /api/translate", h.HandleTranslate)
	mux.HandleFunc("POST /api/simulate", h.HandleSimulate)
	mux.HandleFunc("POST /api/scenario", h.HandleScenario)
	mux.HandleFunc("POST /api/chat", h.HandleChat)
	mux.HandleFunc("GET /api/resources", h.HandleResources)
	mux.HandleFunc("GET /api/session/{id}", h.HandleSession)
	mux.HandleFunc("GET /api/chat/ws", h.HandleChatWS)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return CORS(mux)
}

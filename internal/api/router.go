package api

import (
	"github.com/gorilla/mux"
)

// Router builds the route table. Everything under /qr-codes sits behind
// the bearer-token middleware; the token endpoint, downloads, health and
// metrics do not.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	r.HandleFunc("/auth/token", s.loginHandler).Methods("POST")
	r.HandleFunc("/"+s.cfg.DownloadFolder+"/{filename}", s.downloadHandler).Methods("GET")

	qr := r.PathPrefix("/qr-codes").Subrouter()
	qr.Use(s.requireAuth)
	qr.HandleFunc("/", s.createQRHandler).Methods("POST")
	qr.HandleFunc("/", s.listQRHandler).Methods("GET")
	qr.HandleFunc("/{filename}", s.deleteQRHandler).Methods("DELETE")

	return r
}

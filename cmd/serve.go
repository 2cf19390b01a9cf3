package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/melodex/engine"
	"github.com/jsphweid/melodex/logging"
	"github.com/jsphweid/melodex/model"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var (
	servePort         int
	serveQuarterTones bool
	serveTemplates    string
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default $PORT or 8080)")
	serveCmd.Flags().BoolVar(&serveQuarterTones, "quarter-tones", false, "use the quarter-tone catalog")
	serveCmd.Flags().StringVar(&serveTemplates, "templates", "", "JSON catalog to use instead of the built-in one")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves maqam and tune search over HTTP",
	Long:  `Serves maqam and tune search over HTTP`,
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := loadPatterns(serveTemplates, serveQuarterTones)
		if err != nil {
			return err
		}
		lib, err := loadLibrary()
		if err != nil {
			return fmt.Errorf("could not load library from %v, run index first: %w", cfg.IndexDir, err)
		}
		port := servePort
		if port == 0 {
			port = cfg.Port
		}
		logging.GetLogger().Info("serving",
			slog.Int("port", port),
			slog.Int("templates", patterns.Len()),
			slog.Int("tunes", lib.Summary().NumEntries))
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), NewHandler(newEngine(patterns, lib, false))))
		return nil
	},
}

type server struct {
	engine *engine.Engine
}

// NewHandler routes the search API to e, with CORS open for the web UI.
func NewHandler(e *engine.Engine) http.Handler {
	s := &server{engine: e}
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/maqam", s.handleQuery(engine.ModeMaqam)).Methods("POST")
	router.HandleFunc("/search", s.handleQuery(engine.ModeTune)).Methods("POST")
	router.HandleFunc("/library", s.handleLibrary).Methods("GET")
	router.HandleFunc("/templates", s.handleTemplates).Methods("GET")
	return cors.Default().Handler(router)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logError("could not write response", err)
	}
}

func (s *server) handleQuery(mode engine.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqBody, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "could not read request body"})
			return
		}
		var input model.SearchRequestBody
		if err := json.Unmarshal(reqBody, &input); err != nil {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "could not parse request body: " + err.Error()})
			return
		}

		report, err := s.engine.Run(r.Context(), mode, input.Notes, input.TopK)
		if err != nil {
			logError("query failed", err, slog.String("mode", string(mode)))
			writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
			return
		}
		if report.Failure != nil {
			writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{Error: report.Failure.Message, Kind: string(report.Failure.Kind)})
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	lib := s.engine.Reference()
	if !lib.Prepared() {
		writeJSON(w, http.StatusServiceUnavailable, model.ErrorResponse{Error: model.ErrLibraryNotPrepared.Error()})
		return
	}
	writeJSON(w, http.StatusOK, lib.Summary())
}

func (s *server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	patterns := s.engine.Patterns()
	if patterns == nil {
		writeJSON(w, http.StatusOK, []model.ModeTemplate{})
		return
	}
	writeJSON(w, http.StatusOK, patterns.Templates())
}

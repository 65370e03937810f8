package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"flight-insurance/contracts"
	"flight-insurance/dispatcher"
	"flight-insurance/registry"
	"flight-insurance/types"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type invokeRequest struct {
	Args []string `json:"args"`
}

type operationView struct {
	dispatcher.Operation
	Selector string `json:"selector,omitempty"`
}

type actorView struct {
	Name    string      `json:"name"`
	Group   types.Group `json:"group"`
	Account string      `json:"account"`
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter().StrictSlash(false)
	router.HandleFunc("/", s.rootHandler).Methods("GET")
	router.HandleFunc("/operations", s.getOperations).Methods("GET")
	router.HandleFunc("/actors", s.getActors).Methods("GET")
	router.HandleFunc("/actors/{name}/{operation}", s.invokeOperation).Methods("POST")
	router.HandleFunc("/calls", s.getCalls).Methods("GET")
	return router
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	contract := s.registry.Contract()
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "200 OK - flight insurance client",
		"network":  s.registry.Network().Name,
		"chainId":  s.registry.Network().ChainID.String(),
		"contract": contract.Name,
		"address":  contract.Address.Hex(),
	})
}

// getOperations lists the dispatch table with each method's selector when the loaded
// ABI has it.
func (s *Server) getOperations(w http.ResponseWriter, r *http.Request) {
	parsed := s.registry.Contract().ABI
	ops := dispatcher.Operations()
	out := make([]operationView, 0, len(ops))
	for _, op := range ops {
		v := operationView{Operation: op}
		if sel, err := contracts.FindSelector(parsed, op.Method); err == nil {
			v.Selector = sel
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getActors(w http.ResponseWriter, r *http.Request) {
	actors := s.registry.Actors()
	out := make([]actorView, 0, len(actors))
	for _, a := range actors {
		v := actorView{Name: a.Name, Group: a.Group}
		if a.Client != nil {
			v.Account = a.Client.Account.Hex()
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) invokeOperation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name, operation := vars["name"], vars["operation"]

	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Error decoding request body", http.StatusBadRequest)
		return
	}

	res, err := s.dispatcher.InvokeStrings(r.Context(), operation, name, req.Args)
	if err != nil {
		status := statusFor(err)
		logrus.WithFields(logrus.Fields{
			"actor":     name,
			"operation": operation,
			"status":    status,
		}).WithError(err).Warn("operation failed")
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getCalls(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "Call journal is disabled", http.StatusNotFound)
		return
	}

	var (
		recs interface{}
		err  error
	)
	if actor := r.URL.Query().Get("actor"); actor != "" {
		recs, err = s.journal.ByActor(actor)
	} else {
		recs, err = s.journal.All()
	}
	if err != nil {
		logrus.WithError(err).Error("Error reading call journal")
		http.Error(w, "Error reading call journal", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func statusFor(err error) int {
	var (
		unknownOp *dispatcher.UnknownOperationError
		notFound  *registry.ActorNotFoundError
		badArg    *contracts.ArgumentError
		remote    *dispatcher.RemoteCallError
	)
	switch {
	case errors.As(err, &unknownOp), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &badArg):
		return http.StatusBadRequest
	case errors.As(err, &remote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("Error encoding response")
	}
}

// internal/controller/response.go
package controller

import (
    "encoding/json"
    "errors"
    "net/http"
    "strconv"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/sirupsen/logrus"

    appErrors "github.com/unclebandit/customer-address-backend/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    json.NewEncoder(w).Encode(body)
}

type errorBody struct {
    Error string `json:"error"`
}

// writeError maps the error taxonomy onto status codes. Unknown errors never leak
// their text to the client.
func writeError(w http.ResponseWriter, r *http.Request, log *logrus.Logger, err error) {
    var (
        validation *appErrors.ValidationError
        conflict   *appErrors.ConstraintViolation
        notFound   *appErrors.NotFound
        storeErr   *appErrors.StoreError
    )
    switch {
    case errors.As(err, &validation):
        writeJSON(w, http.StatusBadRequest, errorBody{validation.Message})
    case errors.As(err, &conflict):
        writeJSON(w, http.StatusConflict, errorBody{conflict.Error()})
    case errors.As(err, &notFound):
        writeJSON(w, http.StatusNotFound, errorBody{notFound.Error()})
    case errors.As(err, &storeErr):
        writeJSON(w, http.StatusBadRequest, errorBody{storeErr.Error()})
    default:
        log.WithError(err).WithFields(logrus.Fields{
            "request_id": middleware.GetReqID(r.Context()),
            "path":       r.URL.Path,
        }).Error("unhandled error")
        writeJSON(w, http.StatusInternalServerError, errorBody{"internal server error"})
    }
}

// decodeBody reads a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
    if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
        return appErrors.NewValidation("Invalid request body.")
    }
    return nil
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name, label string) (int, error) {
    id, err := strconv.Atoi(chi.URLParam(r, name))
    if err != nil || id < 1 {
        return 0, appErrors.NewValidation("Invalid %s id.", label)
    }
    return id, nil
}

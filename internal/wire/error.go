package wire

import (
	"errors"
	"net/http"

	"github.com/snapcloud/snapcloud-server/internal/models"
)

// domain sentinels in presentation order; the first match names the error
// on the wire.
var clientErrors = []error{
	models.ErrInvalidRequest,
	models.ErrInvalidCredentials,
	models.ErrUserNotFound,
	models.ErrAlreadyExists,
	models.ErrNotFound,
	models.ErrNotLoggedIn,
}

// WriteError translates a domain error into the plain-text wire form
// "ERROR: <message>". Domain errors are 400s; storage and mail failures
// are 500s. Anything unrecognized is reported as a storage failure so
// internal detail never leaks to the client.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := models.ErrStorage.Error()

	for _, sentinel := range clientErrors {
		if errors.Is(err, sentinel) {
			status = http.StatusBadRequest
			msg = sentinel.Error()
			break
		}
	}
	if errors.Is(err, models.ErrMail) {
		msg = models.ErrMail.Error()
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte("ERROR: " + msg))
}

package usecase

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/acuity"
)

// TransientError: vale a pena tentar de novo (timeout, rede, 5xx).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError: retry não resolve (auth, not-found, chave revogada).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// ClassifyIntegrationError aplica a taxonomia de erros externos.
// Em dúvida classifica como transiente: um retry a mais custa menos que
// marcar um registro como permanentemente falho por engano.
func ClassifyIntegrationError(err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) || IsPermanent(err) {
		return err
	}

	var apiErr *acuity.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403, 404:
			return &PermanentError{Err: err}
		case 408, 429:
			return &TransientError{Err: err}
		}
		if strings.Contains(strings.ToLower(apiErr.Body), "key not active") {
			return &PermanentError{Err: err}
		}
		if apiErr.StatusCode >= 500 {
			return &TransientError{Err: err}
		}
		// 4xx restantes: o request está errado, repetir não muda nada
		if apiErr.StatusCode >= 400 {
			return &PermanentError{Err: err}
		}
		return &TransientError{Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransientError{Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &TransientError{Err: err}
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Err: err}
	}

	return &TransientError{Err: err}
}

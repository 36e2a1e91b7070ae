package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"wabridge/pkg/logger"
)

// maxBodyBytes comporta mídias base64 de até 16MB
const maxBodyBytes = 32 << 20

// decodeJSON lê o corpo da requisição em dst, rejeitando campos desconhecidos
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return err
	}
	return nil
}

// requestLogger usa o logger do request (com request_id) quando o middleware
// de logging o colocou no contexto
func requestLogger(r *http.Request, fallback logger.Logger, component string) logger.Logger {
	return logger.FromContextOr(r.Context(), fallback).WithComponent(component)
}

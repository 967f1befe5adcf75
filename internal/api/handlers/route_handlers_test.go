package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"ridetrace/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("decode: %w", model.ErrInvalidImage), http.StatusBadRequest},
		{&model.SegmentationError{Class: model.ClassRoute}, http.StatusUnprocessableEntity},
		{model.ErrEndpointNotFound, http.StatusUnprocessableEntity},
		{&model.LocatorError{Role: "end", Query: "x"}, http.StatusUnprocessableEntity},
		{model.ErrDegenerateCalibration, http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

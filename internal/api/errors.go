package api

import (
	"errors"
	"fmt"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/dmitrijs2005/datamarket/internal/common"
)

const (
	ETransferNotFound = iota + jsonrpc.FirstUserCode
	EContentNotFound
	EDatasetNotFound
	EInvalidTransition
	EForbidden
	EInvalidRequest
	EAlreadyExists
)

var RPCErrors = jsonrpc.NewErrors()

var (
	_ error = (*ErrTransferNotFound)(nil)
	_ error = (*ErrContentNotFound)(nil)
	_ error = (*ErrDatasetNotFound)(nil)
	_ error = (*ErrInvalidTransition)(nil)
	_ error = (*ErrForbidden)(nil)
	_ error = (*ErrInvalidRequest)(nil)
	_ error = (*ErrAlreadyExists)(nil)
)

func init() {
	RPCErrors.Register(ETransferNotFound, new(*ErrTransferNotFound))
	RPCErrors.Register(EContentNotFound, new(*ErrContentNotFound))
	RPCErrors.Register(EDatasetNotFound, new(*ErrDatasetNotFound))
	RPCErrors.Register(EInvalidTransition, new(*ErrInvalidTransition))
	RPCErrors.Register(EForbidden, new(*ErrForbidden))
	RPCErrors.Register(EInvalidRequest, new(*ErrInvalidRequest))
	RPCErrors.Register(EAlreadyExists, new(*ErrAlreadyExists))
}

// ErrTransferNotFound signals an unknown transfer id.
type ErrTransferNotFound struct{}

func (ErrTransferNotFound) Error() string { return "transfer not found" }

// ErrContentNotFound signals an unknown content identifier.
type ErrContentNotFound struct{}

func (ErrContentNotFound) Error() string { return "content not found" }

// ErrDatasetNotFound signals an unknown dataset listing.
type ErrDatasetNotFound struct{}

func (ErrDatasetNotFound) Error() string { return "dataset not found" }

// ErrInvalidTransition signals a transfer status change that is not allowed,
// e.g. cancelling a completed transfer.
type ErrInvalidTransition struct{}

func (ErrInvalidTransition) Error() string { return "invalid status transition" }

type ErrForbidden struct{}

func (ErrForbidden) Error() string { return "forbidden" }

// ErrInvalidRequest signals bad input: amount, address or metadata.
type ErrInvalidRequest struct{}

func (ErrInvalidRequest) Error() string { return "invalid request" }

type ErrAlreadyExists struct{}

func (ErrAlreadyExists) Error() string { return "already exists" }

// ToRPC converts a service error into the registered error type for its
// class so the peer receives a stable code. notFound is the typed error to
// use for common.ErrorNotFound in the calling method's namespace. Errors
// with no registered class pass through unchanged.
//
// go-jsonrpc matches registered errors by their dynamic type, so the
// returned value must not be wrapped again.
func ToRPC(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return notFound
	case errors.Is(err, common.ErrInvalidTransition):
		return &ErrInvalidTransition{}
	case errors.Is(err, common.ErrForbidden):
		return &ErrForbidden{}
	case errors.Is(err, common.ErrorAlreadyExists):
		return &ErrAlreadyExists{}
	case errors.Is(err, common.ErrInvalidAmount),
		errors.Is(err, common.ErrInvalidAddress),
		errors.Is(err, common.ErrInvalidMetadata),
		errors.Is(err, common.ErrInvalidRequest):
		return &ErrInvalidRequest{}
	}
	return err
}

// FromRPC maps a typed error received from marketd back onto the common
// sentinel so callers can use errors.Is.
func FromRPC(err error) error {
	if err == nil {
		return nil
	}

	var (
		tnf *ErrTransferNotFound
		cnf *ErrContentNotFound
		dnf *ErrDatasetNotFound
		it  *ErrInvalidTransition
		fb  *ErrForbidden
		ir  *ErrInvalidRequest
		ae  *ErrAlreadyExists
	)
	switch {
	case errors.As(err, &tnf), errors.As(err, &cnf), errors.As(err, &dnf):
		return fmt.Errorf("%w: %w", common.ErrorNotFound, err)
	case errors.As(err, &it):
		return fmt.Errorf("%w: %w", common.ErrInvalidTransition, err)
	case errors.As(err, &fb):
		return fmt.Errorf("%w: %w", common.ErrForbidden, err)
	case errors.As(err, &ir):
		return fmt.Errorf("%w: %w", common.ErrInvalidRequest, err)
	case errors.As(err, &ae):
		return fmt.Errorf("%w: %w", common.ErrorAlreadyExists, err)
	}
	return err
}

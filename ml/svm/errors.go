package svm

import (
	"errors"
	"fmt"
)

var (
	// ErrInstantiation is wrapped by every error New returns.
	ErrInstantiation = errors.New("svm instantiation failed")

	// ErrAttributesUnordered means a support vector's attributes are not
	// numbered 0, 1, 2, ... n-1.
	ErrAttributesUnordered = fmt.Errorf("%w: attributes unordered", ErrInstantiation)
	ErrUnsupportedSVMType  = fmt.Errorf("%w: unsupported svm type", ErrInstantiation)
	ErrMalformedModel      = fmt.Errorf("%w: malformed model", ErrInstantiation)

	// ErrUnsupportedOperation is returned by PredictProbability for models
	// trained without probability estimates.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrDimensionMismatch means a Problem was not built for the SVM it is
	// predicted with.
	ErrDimensionMismatch = errors.New("problem dimensions do not match svm")
)

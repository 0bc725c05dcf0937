package domain

import (
	"errors"
	"fmt"
)

// Два вида ошибок модели: недопустимый аргумент и обращение за границы
// кэшированных выходов. Конкретные ошибки ниже оборачивают их через %w,
// так что errors.Is работает и по виду, и по причине.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfRange      = errors.New("out of range")
)

var (
	ErrConversionOutOfRange = fmt.Errorf("%w: conversion must be in [0,1]", ErrInvalidArgument)
	ErrSplitRatioOutOfRange = fmt.Errorf("%w: splitRatio must be in [0,1]", ErrInvalidArgument)
	ErrNegativeInputs       = fmt.Errorf("%w: inputs must be non-negative", ErrInvalidArgument)
	ErrNoSuchOutput         = fmt.Errorf("%w: output index out of range", ErrOutOfRange)
)

var (
	ErrInvalidReactorName  = errors.New("invalid reactor name")
	ErrDuplicateReactor    = errors.New("reactor already exists")
	ErrReactorNotFound     = errors.New("reactor not found")
	ErrReactorLimitReached = errors.New("reactor limit reached")
)

var (
	ErrInvalidMode       = errors.New("invalid output mode")
	ErrInvalidPresetName = errors.New("invalid preset name")
	ErrUnknownPreset     = errors.New("unknown preset")
)

var (
	ErrEmptyBatch    = errors.New("empty batch")
	ErrBatchTooLarge = errors.New("batch scenario limit exceeded")
)

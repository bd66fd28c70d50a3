// Package web provides the file-upload web UI for aobun.
// Users upload a .txt file or a .zip of .txt files and download the
// converted results, or paste text directly for a quick strip.
package web

import "errors"

var (
	// ErrMissingConversionService is returned when the conversion service is not provided.
	ErrMissingConversionService = errors.New("web: conversion service is required")

	// ErrMissingResultStore is returned when the result store is not provided.
	ErrMissingResultStore = errors.New("web: result store is required")

	// ErrMissingFile is returned when an upload carries no file.
	ErrMissingFile = errors.New("no file uploaded")

	// ErrRateLimited is returned when the request exceeds the rate limit.
	ErrRateLimited = errors.New("rate limited")
)

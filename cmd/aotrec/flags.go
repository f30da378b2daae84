package main

import "time"

// Flag structs decouple cobra from logic for testing.

type ServeFlags struct {
	ConfigPath string
	Listen     string
	BasePath   string
	StoreDSN   string
	NoStart    bool // do not start the recording automatically
}

type StatusFlags struct {
	APIUrl     string
	APITimeout time.Duration
}

type EndFlags struct {
	APIUrl     string
	APITimeout time.Duration
}

type StatsFlags struct {
	Name       string
	APIUrl     string
	APITimeout time.Duration
}

type RecordFlags struct {
	Name       string
	Duration   time.Duration
	APIUrl     string
	APITimeout time.Duration
}

type SessionsFlags struct {
	Limit      int
	APIUrl     string
	APITimeout time.Duration
}

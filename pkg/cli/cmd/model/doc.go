// Package model contains the model subcommands for managing the local model
// registry: register, list, get, and remove.
package model

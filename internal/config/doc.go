// Package config locates and parses kitbag's configuration.
//
// Sources in precedence order: built-in defaults, then
// ~/.config/kitbag/config.toml, then KITBAG_* environment variables
// (optionally fed by a .env file loaded at startup). A missing config file
// is not an error; kitbag is expected to run with zero setup against a
// local toolbox.
//
// The only network-facing field is api_bind. It feeds the client's origin
// rule: a loopback host (the default) targets the fixed local development
// port, anything else is addressed as a deployed origin.
package config

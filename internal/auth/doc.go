// Package auth provides operator authentication for the Argus API.
//
// Argus ships with a single bootstrap operator account configured in
// config.yaml (username plus SHA-256 password digest). A successful login
// yields a short-lived HS256 JWT; API middleware validates the token by
// signature only, with no database hit per request.
package auth

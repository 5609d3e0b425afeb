// Package connector manages vendor integration instances.
//
// A connector is a configured credential/endpoint for one vendor category
// (YoLink sensors, Piko video management, Genea access control). Each
// connector carries an opaque JSON config blob whose shape depends on the
// category; ParseConfig turns the blob into a typed, validated config the
// sync pipeline can use.
//
// Deleting a connector cascades its device and association rows at the
// database level.
package connector

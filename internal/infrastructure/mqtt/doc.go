// Package mqtt broadcasts dashboard events over an MQTT broker.
//
// The connection is optional: when events are disabled in config the
// device service simply runs without a publisher. Publishing is fire
// and forget and never blocks a request.
package mqtt

// Package mqtt implements the optional device-state push channel.
//
// Hubs that expose an MQTT broker publish device state under the
// homedeck/ namespace; the gateway subscribes and applies updates to
// the device directory between poll cycles. When MQTT is disabled the
// gateway falls back to polling-only behaviour with no loss of
// correctness (poll results always win conflicts).
package mqtt

package mqtt

import (
	"fmt"
	"strings"
)

// Topic namespace for the HomeDeck push channel.
//
//	homedeck/gateway/status                     gateway online/offline (retained)
//	homedeck/hub/<hubID>/device/<deviceID>/state  device state pushed by a hub
//
// Hubs that support MQTT publish device updates here; the gateway
// subscribes with a wildcard and feeds the device directory between
// poll cycles.
const topicPrefix = "homedeck"

// TopicGatewayStatus returns the retained gateway status topic.
func TopicGatewayStatus() string {
	return topicPrefix + "/gateway/status"
}

// TopicDeviceState returns the state topic for a single device.
func TopicDeviceState(hubID, deviceID string) string {
	return fmt.Sprintf("%s/hub/%s/device/%s/state", topicPrefix, hubID, deviceID)
}

// TopicAllDeviceStates returns the wildcard pattern matching every
// device state topic for a hub.
func TopicAllDeviceStates(hubID string) string {
	return fmt.Sprintf("%s/hub/%s/device/+/state", topicPrefix, hubID)
}

// ParseDeviceStateTopic extracts the hub and device IDs from a device
// state topic. Returns ok=false for topics outside the namespace.
func ParseDeviceStateTopic(topic string) (hubID, deviceID string, ok bool) {
	parts := strings.Split(topic, "/")
	// homedeck / hub / <hubID> / device / <deviceID> / state
	if len(parts) != 6 || parts[0] != topicPrefix || parts[1] != "hub" ||
		parts[3] != "device" || parts[5] != "state" {
		return "", "", false
	}
	if parts[2] == "" || parts[4] == "" {
		return "", "", false
	}
	return parts[2], parts[4], true
}

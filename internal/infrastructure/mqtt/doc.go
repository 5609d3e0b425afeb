// Package mqtt provides MQTT client connectivity for Argus Core.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Argus uses MQTT as the internal event bus connecting the core to
// connector relays (YoLink hub listeners, Piko event forwarders). The
// broker (Mosquitto) decouples the core from vendor-specific transports.
//
//	Argus Core ↔ MQTT Broker ↔ Connector Relays
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all connector device events
//	err = client.Subscribe(mqtt.Topics{}.AllConnectorEvents(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish canonical state
//	topic := mqtt.Topics{}.CoreDeviceState("conn-1:abc123")
//	client.Publish(topic, []byte(`{"displayState":"Open"}`), 1, false)
package mqtt

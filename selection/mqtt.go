package selection

import (
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTOptions holds broker connection settings
type MQTTOptions struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// MQTTOptionsFromEnv fills unset fields from MQTT_BROKER, MQTT_CLIENT_ID,
// MQTT_USERNAME and MQTT_PASSWORD. Explicit values win.
func MQTTOptionsFromEnv(opts MQTTOptions) MQTTOptions {
	if opts.Broker == "" {
		opts.Broker = os.Getenv("MQTT_BROKER")
	}
	if opts.ClientID == "" {
		opts.ClientID = os.Getenv("MQTT_CLIENT_ID")
	}
	if opts.ClientID == "" {
		opts.ClientID = "lcselect"
	}
	if opts.Username == "" {
		opts.Username = os.Getenv("MQTT_USERNAME")
	}
	if opts.Password == "" {
		opts.Password = os.Getenv("MQTT_PASSWORD")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return opts
}

// ConnectMQTT connects to the broker and waits for the connection to be
// established. A selection run publishes once and exits, so unlike a
// long-running service there is no background retry loop.
func ConnectMQTT(opts MQTTOptions) (mqtt.Client, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}

	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(opts.Broker)
	clientOpts.SetClientID(opts.ClientID)
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
		clientOpts.SetPassword(opts.Password)
	}
	clientOpts.SetAutoReconnect(false)
	clientOpts.SetConnectTimeout(opts.Timeout)
	clientOpts.SetKeepAlive(60 * time.Second)
	clientOpts.SetPingTimeout(10 * time.Second)

	log.Printf("Connecting to MQTT broker %s...", opts.Broker)
	client := mqtt.NewClient(clientOpts)
	token := client.Connect()
	if !token.WaitTimeout(opts.Timeout) {
		return nil, fmt.Errorf("mqtt connection timeout after %s", opts.Timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	log.Println("Successfully connected to MQTT broker")
	return client, nil
}

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

// Sensor source kinds accepted by SENSOR_SOURCE.
const (
	SensorMock     = "mock"
	SensorIMU      = "imu"
	SensorSerial   = "serial"
	SensorScenario = "scenario"
)

// Screen source kinds accepted by SCREEN_SOURCE.
const (
	ScreenStatic = "static"
	ScreenMQTT   = "mqtt"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProvider string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDScreen   string

	// Topics
	TopicEstimate          string
	TopicScreenOrientation string

	// Sensor
	SensorSource string
	SampleRateHz float64

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string

	// Serial sensor
	SerialPort     string
	SerialBaudRate int

	// Scenario sensor
	ScenarioFile string

	// Screen orientation
	ScreenSource      string
	ScreenOrientation orientation.ScreenOrientation

	// Web Server
	WebServerPort int

	// Logging
	LogEstimates bool
	LogEvery     int
}

// Defaults returns a Config with every optional value filled in.
func Defaults() *Config {
	return &Config{
		MQTTClientIDProvider:   "orientation-provider",
		MQTTClientIDConsole:    "orientation-console-subscriber",
		MQTTClientIDWeb:        "orientation-web-subscriber",
		MQTTClientIDScreen:     "orientation-screen-subscriber",
		TopicEstimate:          "orientation/estimate",
		TopicScreenOrientation: "orientation/screen",
		SensorSource:           SensorMock,
		SampleRateHz:           orientation.DefaultRateHz,
		SerialBaudRate:         115200,
		ScreenSource:           ScreenStatic,
		ScreenOrientation:      orientation.Portrait,
		LogEstimates:           true,
		LogEvery:               1,
	}
}

// globalConfig is only reachable through InitGlobal and Get. configOnce
// makes InitGlobal run once; configMu guards reads against initialization.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PROVIDER":
		c.MQTTClientIDProvider = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_SCREEN":
		c.MQTTClientIDScreen = value

	// Topics
	case "TOPIC_ESTIMATE":
		c.TopicEstimate = value
	case "TOPIC_SCREEN_ORIENTATION":
		c.TopicScreenOrientation = value

	// Sensor
	case "SENSOR_SOURCE":
		switch value {
		case SensorMock, SensorIMU, SensorSerial, SensorScenario:
			c.SensorSource = value
		default:
			return fmt.Errorf("SENSOR_SOURCE must be one of mock, imu, serial, scenario, got %q", value)
		}
	case "SAMPLE_RATE_HZ":
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_RATE_HZ %q: %w", value, err)
		}
		if rate < 1 || rate > 1000 {
			return fmt.Errorf("SAMPLE_RATE_HZ must be 1-1000, got %v", rate)
		}
		c.SampleRateHz = rate

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value

	// Serial sensor
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		if rate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE must be positive, got %d", rate)
		}
		c.SerialBaudRate = rate

	// Scenario sensor
	case "SCENARIO_FILE":
		c.ScenarioFile = value

	// Screen orientation
	case "SCREEN_SOURCE":
		switch value {
		case ScreenStatic, ScreenMQTT:
			c.ScreenSource = value
		default:
			return fmt.Errorf("SCREEN_SOURCE must be static or mqtt, got %q", value)
		}
	case "SCREEN_ORIENTATION":
		o, err := orientation.ParseScreenOrientation(value)
		if err != nil {
			return fmt.Errorf("invalid SCREEN_ORIENTATION: %w", err)
		}
		c.ScreenOrientation = o

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port < 0 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", port)
		}
		c.WebServerPort = port

	// Logging
	case "LOG_ESTIMATES":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid LOG_ESTIMATES %q: %w", value, err)
		}
		c.LogEstimates = v
	case "LOG_EVERY":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LOG_EVERY %q: %w", value, err)
		}
		if n < 1 {
			return fmt.Errorf("LOG_EVERY must be at least 1, got %d", n)
		}
		c.LogEvery = n

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicEstimate == "" {
		return fmt.Errorf("TOPIC_ESTIMATE is required")
	}
	switch c.SensorSource {
	case SensorIMU:
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required for SENSOR_SOURCE=imu")
		}
		if c.IMUCSPin == "" {
			return fmt.Errorf("IMU_CS_PIN is required for SENSOR_SOURCE=imu")
		}
	case SensorSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for SENSOR_SOURCE=serial")
		}
	case SensorScenario:
		if c.ScenarioFile == "" {
			return fmt.Errorf("SCENARIO_FILE is required for SENSOR_SOURCE=scenario")
		}
	}
	if c.ScreenSource == ScreenMQTT && c.TopicScreenOrientation == "" {
		return fmt.Errorf("TOPIC_SCREEN_ORIENTATION is required for SCREEN_SOURCE=mqtt")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads the file; later calls are no-ops.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

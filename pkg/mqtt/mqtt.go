// Package mqtt provides MQTT communication capabilities for the bot.
// It publishes domain events and serves request/response topics for external services.
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MqttRequest represents an MQTT request message
type MqttRequest struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// MqttResponse represents an MQTT response message
type MqttResponse struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// RequestHandler is a function type for handling MQTT requests
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

type route struct {
	pattern string
	handler RequestHandler
}

// MqttCommunicator handles MQTT communication under a topic prefix:
//
//	<prefix>/events/<type>               domain events
//	<prefix>/request/<topic>             incoming requests
//	<prefix>/response/<topic>/<corrId>   responses
type MqttCommunicator struct {
	client           mqtt.Client
	prefix           string
	responseHandlers map[string]func(MqttResponse)
	routes           []route
	mu               sync.RWMutex
	clientID         string
	subscribeOnce    sync.Once
}

var (
	communicator *MqttCommunicator
	once         sync.Once
)

// Init initializes the global MQTT communicator
func Init(host, port, username, password, clientID, prefix string) *MqttCommunicator {
	once.Do(func() {
		communicator = NewMqttCommunicator(host, port, username, password, clientID, prefix)
	})
	return communicator
}

// Get returns the global MQTT communicator
func Get() *MqttCommunicator {
	return communicator
}

func newCommunicator(clientID, prefix string) *MqttCommunicator {
	if prefix == "" {
		prefix = "community"
	}
	return &MqttCommunicator{
		prefix:           strings.TrimSuffix(prefix, "/"),
		responseHandlers: make(map[string]func(MqttResponse)),
		clientID:         clientID,
	}
}

// NewMqttCommunicator creates a communicator and connects it in the background
func NewMqttCommunicator(host, port, username, password, clientID, prefix string) *MqttCommunicator {
	mc := newCommunicator(clientID, prefix)

	uniqueID := fmt.Sprintf("%s_%s", clientID, uuid.New().String())

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(uniqueID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", clientID), "MQTT")
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	mc.client = mqtt.NewClient(opts)

	token := mc.client.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}

	return mc
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if mc.IsConnected() {
		mc.client.Disconnect(250)
		logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
	} else {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc.client != nil && mc.client.IsConnected()
}

// EventTopic is the topic domain events of eventType are published to
func (mc *MqttCommunicator) EventTopic(eventType string) string {
	return mc.prefix + "/events/" + eventType
}

func (mc *MqttCommunicator) requestTopic(topic string) string {
	return mc.prefix + "/request/" + topic
}

func (mc *MqttCommunicator) responseTopic(topic, correlationID string) string {
	return fmt.Sprintf("%s/response/%s/%s", mc.prefix, topic, correlationID)
}

// Publish sends a message to a topic
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	if mc.client == nil {
		return fmt.Errorf("cliente MQTT no inicializado")
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := mc.client.Publish(topic, 0, false, jsonData)
	token.Wait()
	return token.Error()
}

// Notify publishes a domain event without blocking the caller.
// Events are dropped while the broker is unreachable.
func (mc *MqttCommunicator) Notify(e notify.Event) {
	if !mc.IsConnected() {
		return
	}
	go func() {
		defer apperrors.RecoverMiddleware()()
		if err := mc.Publish(mc.EventTopic(e.Type), e); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo publicar %s: %v", e.Type, err), "MQTT")
		}
	}()
}

// Request sends a request and waits for a response
func (mc *MqttCommunicator) Request(topic string, payload interface{}, timeout time.Duration) (interface{}, error) {
	correlationID := uuid.New().String()
	responseTopic := mc.responseTopic(topic, correlationID)

	responseChan := make(chan MqttResponse, 1)
	errChan := make(chan error, 1)

	mc.mu.Lock()
	mc.responseHandlers[correlationID] = func(response MqttResponse) {
		responseChan <- response
	}
	mc.mu.Unlock()

	defer func() {
		mc.mu.Lock()
		delete(mc.responseHandlers, correlationID)
		mc.mu.Unlock()
		mc.client.Unsubscribe(responseTopic)
	}()

	token := mc.client.Subscribe(responseTopic, 0, func(c mqtt.Client, msg mqtt.Message) {
		var response MqttResponse
		if err := json.Unmarshal(msg.Payload(), &response); err != nil {
			errChan <- err
			return
		}

		mc.mu.RLock()
		handler, exists := mc.responseHandlers[response.CorrelationID]
		mc.mu.RUnlock()

		if exists {
			handler(response)
		}
	})

	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	request := MqttRequest{
		CorrelationID: correlationID,
		Payload:       payload,
	}

	if err := mc.Publish(mc.requestTopic(topic), request); err != nil {
		return nil, err
	}

	select {
	case response := <-responseChan:
		if response.Error != "" {
			return nil, fmt.Errorf("%s", response.Error)
		}
		return response.Data, nil
	case err := <-errChan:
		return nil, err
	case <-time.After(timeout):
		return nil, fmt.Errorf("la petición a '%s' ha expirado (timeout)", topic)
	}
}

// On registers a handler for request topics matching pattern ('+' and '#' allowed).
// All requests share one wildcard subscription.
func (mc *MqttCommunicator) On(pattern string, callback RequestHandler) {
	mc.mu.Lock()
	mc.routes = append(mc.routes, route{pattern: pattern, handler: callback})
	mc.mu.Unlock()

	if mc.client == nil {
		return
	}

	mc.subscribeOnce.Do(func() {
		topic := mc.requestTopic("#")
		token := mc.client.Subscribe(topic, 0, func(c mqtt.Client, msg mqtt.Message) {
			defer apperrors.RecoverMiddleware()()
			responseTopic, response, ok := mc.handleRequest(msg.Topic(), msg.Payload())
			if ok {
				mc.Publish(responseTopic, response)
			}
		})
		if token.Wait() && token.Error() != nil {
			logger.Error(fmt.Sprintf("Error subscribing to topic %s: %v", topic, token.Error()), "MQTT")
		}
	})
}

// handleRequest runs the handler matching receivedTopic and builds its response
func (mc *MqttCommunicator) handleRequest(receivedTopic string, raw []byte) (string, MqttResponse, bool) {
	var request MqttRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), "MQTT")
		return "", MqttResponse{}, false
	}

	actualTopic := strings.TrimPrefix(receivedTopic, mc.prefix+"/request/")

	mc.mu.RLock()
	var handler RequestHandler
	for _, r := range mc.routes {
		if topicMatch(r.pattern, actualTopic) {
			handler = r.handler
			break
		}
	}
	mc.mu.RUnlock()

	if handler == nil {
		return "", MqttResponse{}, false
	}

	payloadMap := make(map[string]interface{})
	if pm, ok := request.Payload.(map[string]interface{}); ok {
		payloadMap = pm
	}
	payloadMap["_topic"] = actualTopic

	response := MqttResponse{CorrelationID: request.CorrelationID}
	data, err := handler(payloadMap)
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Data = data
	}

	return mc.responseTopic(actualTopic, request.CorrelationID), response, true
}

// Subscribe subscribes to a topic with a message handler
func (mc *MqttCommunicator) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	token := mc.client.Subscribe(topic, 0, func(c mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	token.Wait()
	return token.Error()
}

// Unsubscribe unsubscribes from a topic
func (mc *MqttCommunicator) Unsubscribe(topic string) error {
	token := mc.client.Unsubscribe(topic)
	token.Wait()
	return token.Error()
}

// topicMatch checks if a received topic matches a pattern (with wildcards)
// '+' matches exactly one topic level
// '#' matches zero or more topic levels and must be the last character
func topicMatch(pattern, topic string) bool {
	patternParts := strings.Split(pattern, "/")
	topicParts := strings.Split(topic, "/")

	for i, part := range patternParts {
		if part == "#" {
			return true
		}
		if i >= len(topicParts) {
			return false
		}
		if part != "+" && part != topicParts[i] {
			return false
		}
	}

	return len(patternParts) == len(topicParts)
}

package client

import (
	"bytes"
	"encoding/json"

	"storechat/internal/types"
)

type SendMessageRequest struct {
	Message      string `json:"message"`
	OrderID      *int64 `json:"order_id,omitempty"`
	SkipTelegram bool   `json:"skip_telegram,omitempty"`
}

// SendMessageResponse echoes the stored row when the backend returns one.
type SendMessageResponse struct {
	Message *types.Message `json:"-"`
}

type messagesEnvelope struct {
	Data     []types.Message `json:"data"`
	Messages []types.Message `json:"messages"`
}

type ordersEnvelope struct {
	Data   []types.Order `json:"data"`
	Orders []types.Order `json:"orders"`
}

type sendEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Message json.RawMessage `json:"message"`
}

// The backend has shipped bare arrays and several envelope shapes for the
// same endpoints; decoders accept all of them.

func decodeMessages(data []byte) ([]types.Message, error) {
	if isJSONArray(data) {
		var out []types.Message
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var env messagesEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Data != nil {
		return env.Data, nil
	}
	return env.Messages, nil
}

func decodeOrders(data []byte) ([]types.Order, error) {
	if isJSONArray(data) {
		var out []types.Order
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var env ordersEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Data != nil {
		return env.Data, nil
	}
	return env.Orders, nil
}

func decodeSendResponse(data []byte) *SendMessageResponse {
	resp := &SendMessageResponse{}
	if len(bytes.TrimSpace(data)) == 0 {
		return resp
	}
	var env sendEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return resp
	}
	for _, candidate := range [][]byte{env.Data, env.Message, data} {
		if msg := decodeStoredMessage(candidate); msg != nil {
			resp.Message = msg
			break
		}
	}
	return resp
}

func decodeStoredMessage(data []byte) *types.Message {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var msg types.Message
	if err := json.Unmarshal(trimmed, &msg); err != nil || msg.ID <= 0 {
		return nil
	}
	return &msg
}

func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/colorlightd/internal/lights"
)

// --- List Lights ---

// ListLightsInput is the input for listing all lights.
type ListLightsInput struct{}

// ListLightsOutput is the output for listing all lights, keyed by ID.
type ListLightsOutput struct {
	Body map[string]LightResponse
}

// --- Get Light ---

// GetLightInput is the input for getting a single light.
type GetLightInput struct {
	ID string `path:"id" doc:"Light identifier"`
}

// GetLightOutput is the output for getting a single light.
type GetLightOutput struct {
	Body LightResponse
}

// --- Set Light State ---

// SetLightStateInput is the input for setting a light's state. Absent
// fields are left unchanged.
type SetLightStateInput struct {
	ID   string `path:"id" doc:"Light identifier"`
	Body struct {
		On         *bool `json:"on,omitempty" doc:"Power state"`
		Brightness *int  `json:"brightness,omitempty" doc:"Brightness level (0-100)"`
		Hue        *int  `json:"hue,omitempty" doc:"Hue in degrees (0-359)"`
		Saturation *int  `json:"saturation,omitempty" doc:"Saturation percent (0-100)"`
	}
}

// SetLightStateOutput is the output for setting a light's state.
type SetLightStateOutput struct {
	Body StatusResponse
}

// LightHandler implements light-related HTTP handlers.
type LightHandler struct {
	Lights lights.Service
}

// ListLights returns all discovered lights as a map keyed by ID.
func (h *LightHandler) ListLights(_ context.Context, _ *ListLightsInput) (*ListLightsOutput, error) {
	return &ListLightsOutput{
		Body: LightsMapFromService(h.Lights.GetLights()),
	}, nil
}

// GetLight returns a single light by ID.
func (h *LightHandler) GetLight(_ context.Context, input *GetLightInput) (*GetLightOutput, error) {
	light, err := h.Lights.GetLight(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("Light not found: %s", err))
	}
	return &GetLightOutput{Body: LightFromService(light)}, nil
}

// SetLightState sets one or more characteristics on a light.
func (h *LightHandler) SetLightState(_ context.Context, input *SetLightStateInput) (*SetLightStateOutput, error) {
	var errs []string

	if input.Body.On != nil {
		if err := h.Lights.SetLightPower(input.ID, *input.Body.On); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if input.Body.Brightness != nil {
		if err := h.Lights.SetLightBrightness(input.ID, *input.Body.Brightness); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if input.Body.Hue != nil {
		if err := h.Lights.SetLightHue(input.ID, *input.Body.Hue); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if input.Body.Saturation != nil {
		if err := h.Lights.SetLightSaturation(input.ID, *input.Body.Saturation); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return nil, huma.Error500InternalServerError(
			fmt.Sprintf("Error(s) setting light state: %s", strings.Join(errs, "; ")),
		)
	}

	return &SetLightStateOutput{
		Body: StatusResponse{Status: "ok"},
	}, nil
}

// Ensure LightHandler implements the interface at compile time.
var _ LightHandlers = (*LightHandler)(nil)

// LightHandlers defines the interface for light operations.
type LightHandlers interface {
	ListLights(ctx context.Context, input *ListLightsInput) (*ListLightsOutput, error)
	GetLight(ctx context.Context, input *GetLightInput) (*GetLightOutput, error)
	SetLightState(ctx context.Context, input *SetLightStateInput) (*SetLightStateOutput, error)
}

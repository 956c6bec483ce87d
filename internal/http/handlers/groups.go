package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	cerrors "github.com/jmylchreest/colorlightd/internal/errors"
	"github.com/jmylchreest/colorlightd/internal/group"
)

// --- List Groups ---

// ListGroupsInput is the input for listing all groups.
type ListGroupsInput struct{}

// ListGroupsOutput is the output for listing all groups.
type ListGroupsOutput struct {
	Body []GroupResponse
}

// --- Create Group ---

// CreateGroupInput is the input for creating a new group.
type CreateGroupInput struct {
	Body struct {
		Name     string   `json:"name" doc:"Display name for the group" minLength:"1"`
		LightIDs []string `json:"light_ids,omitempty" doc:"Optional list of light IDs to include"`
	}
}

// CreateGroupOutput is the output for creating a new group (HTTP 201).
// The 201 status is set via DefaultStatus in the operation registration.
type CreateGroupOutput struct {
	Body GroupResponse
}

// --- Get Group ---

// GetGroupInput is the input for getting a single group.
type GetGroupInput struct {
	ID string `path:"id" doc:"Group identifier (UUID or name)"`
}

// GetGroupOutput is the output for getting a single group.
type GetGroupOutput struct {
	Body GroupResponse
}

// --- Delete Group ---

// DeleteGroupInput is the input for deleting a group.
type DeleteGroupInput struct {
	ID string `path:"id" doc:"Group identifier"`
}

// DeleteGroupOutput is the output for deleting a group (HTTP 204).
type DeleteGroupOutput struct{}

// --- Set Group Lights ---

// SetGroupLightsInput is the input for setting which lights belong to a group.
type SetGroupLightsInput struct {
	ID   string `path:"id" doc:"Group identifier"`
	Body struct {
		LightIDs []string `json:"light_ids" doc:"List of light IDs to assign to the group"`
	}
}

// SetGroupLightsOutput is the output for setting group lights.
type SetGroupLightsOutput struct {
	Body StatusResponse
}

// --- Set Group State ---

// SetGroupStateInput is the input for setting a group's state.
// The ID path parameter supports comma-separated IDs/names for multi-group targeting.
type SetGroupStateInput struct {
	ID   string `path:"id" doc:"Group identifier(s), comma-separated for multi-target"`
	Body struct {
		On         *bool `json:"on,omitempty" doc:"Power state for all lights in the group"`
		Brightness *int  `json:"brightness,omitempty" doc:"Brightness level (0-100) for all lights"`
		Hue        *int  `json:"hue,omitempty" doc:"Hue in degrees (0-359) for all lights"`
		Saturation *int  `json:"saturation,omitempty" doc:"Saturation percent (0-100) for all lights"`
	}
}

// SetGroupStateOutput is the output for setting group state.
// On success returns 200 with {"status": "ok"}.
// On partial failure returns 207 with {"status": "partial", "errors": [...]}.
// This uses a raw writer because Huma doesn't natively support 207 Multi-Status.
type SetGroupStateOutput struct {
	Body any // Either StatusResponse or PartialStatusResponse
}

// GroupHandler implements group-related HTTP handlers.
type GroupHandler struct {
	Groups *group.Manager
}

// ListGroups returns all groups as an array.
func (h *GroupHandler) ListGroups(_ context.Context, _ *ListGroupsInput) (*ListGroupsOutput, error) {
	groups := h.Groups.GetGroups()
	return &ListGroupsOutput{
		Body: GroupsFromInternal(groups),
	}, nil
}

// CreateGroup creates a new group and returns it with HTTP 201.
func (h *GroupHandler) CreateGroup(_ context.Context, input *CreateGroupInput) (*CreateGroupOutput, error) {
	if input.Body.Name == "" {
		return nil, huma.Error400BadRequest("Group name is required")
	}

	grp, err := h.Groups.CreateGroup(input.Body.Name, input.Body.LightIDs)
	if err != nil {
		if cerrors.IsNotFound(err) {
			return nil, huma.Error404NotFound(fmt.Sprintf("Light not found: %s", err))
		}
		return nil, huma.Error500InternalServerError(fmt.Sprintf("Failed to create group: %s", err))
	}

	return &CreateGroupOutput{
		Body: GroupFromInternal(grp),
	}, nil
}

// GetGroup returns a single group by ID.
func (h *GroupHandler) GetGroup(_ context.Context, input *GetGroupInput) (*GetGroupOutput, error) {
	grp, err := h.Groups.GetGroup(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("Group not found: %s", err))
	}
	return &GetGroupOutput{Body: GroupFromInternal(grp)}, nil
}

// DeleteGroup deletes a group and returns HTTP 204.
func (h *GroupHandler) DeleteGroup(_ context.Context, input *DeleteGroupInput) (*DeleteGroupOutput, error) {
	if err := h.Groups.DeleteGroup(input.ID); err != nil {
		if cerrors.IsNotFound(err) {
			return nil, huma.Error404NotFound("Group not found")
		}
		return nil, huma.Error500InternalServerError(fmt.Sprintf("Failed to delete group: %s", err))
	}
	return &DeleteGroupOutput{}, nil
}

// SetGroupLights sets which lights belong to a group.
func (h *GroupHandler) SetGroupLights(_ context.Context, input *SetGroupLightsInput) (*SetGroupLightsOutput, error) {
	if err := h.Groups.SetGroupLights(input.ID, input.Body.LightIDs); err != nil {
		if cerrors.IsNotFound(err) {
			return nil, huma.Error404NotFound("Group or light not found")
		}
		return nil, huma.Error500InternalServerError(fmt.Sprintf("Failed to set group lights: %s", err))
	}
	return &SetGroupLightsOutput{
		Body: StatusResponse{Status: "ok"},
	}, nil
}

// applyGroupState applies the requested characteristics to every matched
// group and collects per-group errors.
func (h *GroupHandler) applyGroupState(groups []*group.Group, on *bool, brightness, hue, saturation *int) []string {
	var errs []string
	for _, grp := range groups {
		if on != nil {
			if err := h.Groups.SetGroupPower(grp.ID, *on); err != nil {
				errs = append(errs, fmt.Sprintf("group %s: %s", grp.ID, err))
			}
		}
		if brightness != nil {
			if err := h.Groups.SetGroupBrightness(grp.ID, *brightness); err != nil {
				errs = append(errs, fmt.Sprintf("group %s: %s", grp.ID, err))
			}
		}
		if hue != nil {
			if err := h.Groups.SetGroupHue(grp.ID, *hue); err != nil {
				errs = append(errs, fmt.Sprintf("group %s: %s", grp.ID, err))
			}
		}
		if saturation != nil {
			if err := h.Groups.SetGroupSaturation(grp.ID, *saturation); err != nil {
				errs = append(errs, fmt.Sprintf("group %s: %s", grp.ID, err))
			}
		}
	}
	return errs
}

// SetGroupState sets the state for one or more groups (comma-separated IDs/names).
// Returns 200 on full success, 207 on partial failure.
// This is implemented as a raw handler because Huma doesn't support 207.
func (h *GroupHandler) SetGroupState(_ context.Context, input *SetGroupStateInput) (*SetGroupStateOutput, error) {
	matched, notFound := h.Groups.GetGroupsByKeys(input.ID)
	if len(matched) == 0 {
		return nil, huma.Error404NotFound(fmt.Sprintf("No groups found for: %v", notFound))
	}

	errs := h.applyGroupState(matched, input.Body.On, input.Body.Brightness, input.Body.Hue, input.Body.Saturation)
	if len(errs) > 0 {
		return &SetGroupStateOutput{
			Body: PartialStatusResponse{Status: "partial", Errors: errs},
		}, nil
	}

	return &SetGroupStateOutput{
		Body: StatusResponse{Status: "ok"},
	}, nil
}

// SetGroupStateRaw is the raw HTTP handler for SetGroupState.
// This is needed because Huma doesn't natively support 207 Multi-Status.
// It wraps the typed logic and writes the appropriate status code.
func (h *GroupHandler) SetGroupStateRaw(api huma.API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

		groupParam := r.PathValue("id")
		matched, notFound := h.Groups.GetGroupsByKeys(groupParam)
		if len(matched) == 0 {
			http.Error(w, fmt.Sprintf("No groups found for: %v", notFound), http.StatusNotFound)
			return
		}

		var reqBody struct {
			On         *bool `json:"on,omitempty"`
			Brightness *int  `json:"brightness,omitempty"`
			Hue        *int  `json:"hue,omitempty"`
			Saturation *int  `json:"saturation,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		errs := h.applyGroupState(matched, reqBody.On, reqBody.Brightness, reqBody.Hue, reqBody.Saturation)

		w.Header().Set("Content-Type", "application/json")
		if len(errs) > 0 {
			w.WriteHeader(http.StatusMultiStatus) // 207
			json.NewEncoder(w).Encode(PartialStatusResponse{Status: "partial", Errors: errs})
			return
		}
		json.NewEncoder(w).Encode(StatusResponse{Status: "ok"})
	}
}

// Ensure GroupHandler implements the interface at compile time.
var _ GroupHandlers = (*GroupHandler)(nil)

// GroupHandlers defines the interface for group operations.
type GroupHandlers interface {
	ListGroups(ctx context.Context, input *ListGroupsInput) (*ListGroupsOutput, error)
	CreateGroup(ctx context.Context, input *CreateGroupInput) (*CreateGroupOutput, error)
	GetGroup(ctx context.Context, input *GetGroupInput) (*GetGroupOutput, error)
	DeleteGroup(ctx context.Context, input *DeleteGroupInput) (*DeleteGroupOutput, error)
	SetGroupLights(ctx context.Context, input *SetGroupLightsInput) (*SetGroupLightsOutput, error)
	SetGroupState(ctx context.Context, input *SetGroupStateInput) (*SetGroupStateOutput, error)
	SetGroupStateRaw(api huma.API) http.HandlerFunc
}

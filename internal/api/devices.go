package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/asset"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/audit"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/device"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/storage"
)

// devicePayload is the wire format for device create/update requests.
// Rack and slot arrive from the form as either numbers or strings; the
// flexString type accepts both.
type devicePayload struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Brand       string     `json:"brand"`
	Category    string     `json:"category"`
	Rack        flexString `json:"rack"`
	Slot        flexString `json:"slot"`
	IP          string     `json:"ip"`
	Application string     `json:"application"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Serial      string     `json:"serial"`
	GLBURL      string     `json:"glb_url"`
}

// flexString unmarshals a JSON string, number or null into a string.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	// Number or anything else: keep the raw token for the parser.
	*f = flexString(b)
	return nil
}

// toDevice converts the payload into a domain device.
// Rack and slot parse errors surface as the domain's sentinel errors.
func (p *devicePayload) toDevice() (*device.Device, error) {
	rack, err := device.ParseRack(string(p.Rack))
	if err != nil {
		return nil, err
	}
	slot, err := device.ParseSlot(string(p.Slot))
	if err != nil {
		return nil, err
	}

	return &device.Device{
		ID:          strings.TrimSpace(p.ID),
		Name:        strings.TrimSpace(p.Name),
		Brand:       strings.TrimSpace(p.Brand),
		Category:    strings.TrimSpace(p.Category),
		Rack:        rack,
		Slot:        slot,
		IP:          strings.TrimSpace(p.IP),
		Application: strings.TrimSpace(p.Application),
		URL:         strings.TrimSpace(p.URL),
		Description: strings.TrimSpace(p.Description),
		Serial:      strings.TrimSpace(p.Serial),
		GLBURL:      strings.TrimSpace(p.GLBURL),
	}, nil
}

// handleDevicesGet dispatches GET /devices on the endpoint parameter:
// device listing, rack listing, preload asset listing or rack count.
func (s *Server) handleDevicesGet(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("endpoint") {
	case "":
		s.listDevices(w, r)
	case "racks":
		s.listRacks(w, r)
	case "preload-assets":
		s.listPreloadAssets(w, r)
	case "rack-device-count":
		s.rackDeviceCount(w, r)
	default:
		writeBadRequest(w, "unknown endpoint")
	}
}

func (s *Server) listDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.logger.Error("failed to list devices", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}
	if devices == nil {
		devices = []*device.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) listRacks(w http.ResponseWriter, r *http.Request) {
	racks, err := s.devices.Racks(r.Context())
	if err != nil {
		s.logger.Error("failed to list racks", "error", err)
		writeInternalError(w, "failed to list racks")
		return
	}
	if racks == nil {
		racks = []device.RackInfo{}
	}
	writeJSON(w, http.StatusOK, racks)
}

func (s *Server) listPreloadAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.assets.ListPreload(r.Context())
	if err != nil {
		s.logger.Error("failed to list preload assets", "error", err)
		writeInternalError(w, "failed to list preload assets")
		return
	}
	if assets == nil {
		assets = []storage.ObjectInfo{}
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) rackDeviceCount(w http.ResponseWriter, r *http.Request) {
	rackRaw := r.URL.Query().Get("rack")
	if rackRaw == "" {
		writeBadRequest(w, "rack parameter is required")
		return
	}
	rack, err := strconv.Atoi(rackRaw)
	if err != nil || rack < 0 {
		writeBadRequest(w, "rack must be a non-negative integer")
		return
	}

	count, err := s.devices.RackDeviceCount(r.Context(), rack, r.URL.Query().Get("deviceId"))
	if err != nil {
		s.logger.Error("failed to count rack devices", "rack", rack, "error", err)
		writeInternalError(w, "failed to count rack devices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// handleDevicesPost dispatches POST /devices: device creation, signed
// upload URL issuance or multipart preload asset upload.
func (s *Server) handleDevicesPost(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("endpoint") {
	case "":
		s.createDevice(w, r)
	case "generate-signed-url":
		s.generateSignedURL(w, r)
	case "preload-assets":
		s.uploadPreloadAsset(w, r)
	default:
		writeBadRequest(w, "unknown endpoint")
	}
}

func (s *Server) createDevice(w http.ResponseWriter, r *http.Request) {
	var payload devicePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d, err := payload.toDevice()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if err := s.devices.Create(r.Context(), d); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.auditLog(audit.ActionCreate, audit.EntityDevice, d.ID, sessionFrom(r.Context()), map[string]any{
		"name": d.Name, "rack": d.Rack, "slot": d.Slot,
	})
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) generateSignedURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssetName string `json:"assetName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AssetName == "" {
		writeBadRequest(w, "assetName is required")
		return
	}

	signed, err := s.assets.SignUpload(r.Context(), req.AssetName)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signed)
}

func (s *Server) uploadPreloadAsset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(asset.MaxAssetSize); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}

	name := r.FormValue("name")
	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "file field is required")
		return
	}
	defer file.Close()
	if name == "" {
		name = header.Filename
	}

	data, err := io.ReadAll(io.LimitReader(file, asset.MaxAssetSize+1))
	if err != nil {
		s.logger.Error("failed to read upload", "error", err)
		writeInternalError(w, "failed to read upload")
		return
	}

	url, err := s.assets.Publish(r.Context(), name, data)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.auditLog(audit.ActionCreate, audit.EntityAsset, name, sessionFrom(r.Context()), map[string]any{
		"size": len(data),
	})
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// handleDevicesPut updates a device. The full device including id is
// expected in the body.
func (s *Server) handleDevicesPut(w http.ResponseWriter, r *http.Request) {
	var payload devicePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if payload.ID == "" {
		writeBadRequest(w, "id is required")
		return
	}

	d, err := payload.toDevice()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if err := s.devices.Update(r.Context(), d); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.auditLog(audit.ActionUpdate, audit.EntityDevice, d.ID, sessionFrom(r.Context()), map[string]any{
		"name": d.Name, "rack": d.Rack, "slot": d.Slot,
	})
	writeJSON(w, http.StatusOK, d)
}

// handleDevicesDelete dispatches DELETE /devices: single or bulk device
// deletion, or preload asset removal.
func (s *Server) handleDevicesDelete(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("endpoint") {
	case "":
		s.deleteDevices(w, r)
	case "preload-assets":
		s.deletePreloadAsset(w, r)
	default:
		writeBadRequest(w, "unknown endpoint")
	}
}

func (s *Server) deleteDevices(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID  string   `json:"id"`
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	ids := req.IDs
	if req.ID != "" {
		ids = append(ids, req.ID)
	}
	if len(ids) == 0 {
		writeBadRequest(w, "id or ids is required")
		return
	}

	sess := sessionFrom(r.Context())
	if len(ids) == 1 {
		if err := s.devices.Delete(r.Context(), ids[0]); err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.auditLog(audit.ActionDelete, audit.EntityDevice, ids[0], sess, nil)
		writeJSON(w, http.StatusOK, map[string]any{"deleted": 1})
		return
	}

	deleted, err := s.devices.BulkDelete(r.Context(), ids)
	if err != nil && deleted == 0 {
		s.writeDomainError(w, err)
		return
	}
	// Partial failures still report what was removed.
	s.auditLog(audit.ActionBulkDelete, audit.EntityDevice, "", sess, map[string]any{
		"requested": len(ids), "deleted": deleted,
	})
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (s *Server) deletePreloadAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssetName string `json:"assetName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AssetName == "" {
		writeBadRequest(w, "assetName is required")
		return
	}

	if err := s.assets.DeletePreload(r.Context(), req.AssetName); err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			writeNotFound(w, err.Error())
			return
		}
		s.writeDomainError(w, err)
		return
	}

	s.auditLog(audit.ActionDelete, audit.EntityAsset, req.AssetName, sessionFrom(r.Context()), nil)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": req.AssetName})
}

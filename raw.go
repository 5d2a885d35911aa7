package minapi

import "net/http"

// RawRequest gives a handler the underlying *http.Request. It binds from
// nothing and contributes no metadata.
type RawRequest struct {
	Request *http.Request
}

// BindRequest implements RequestBinder.
func (rr *RawRequest) BindRequest(r *http.Request, _ *Parameter) error {
	rr.Request = r
	return nil
}

// PopulateParameterMetadata implements ParameterMetadataProvider.
func (*RawRequest) PopulateParameterMetadata(*Parameter, *EndpointBuilder) {}

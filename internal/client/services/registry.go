package services

import (
	"github.com/dmitrijs2005/mediahub/internal/client/api"
	"github.com/dmitrijs2005/mediahub/internal/client/query"
)

// NewRegistry lists every mutation the services run and the read endpoints
// each one makes stale. Item-level keys are added per call.
func NewRegistry() *query.Registry {
	return query.NewRegistry().
		Register(api.MutationSignIn, api.EndpointMediaList, api.EndpointMediaItem).
		Register(api.MutationSignUp, api.EndpointMediaList, api.EndpointMediaItem).
		Register(api.MutationMediaUpload, api.EndpointMediaList).
		Register(api.MutationMediaUpdate, api.EndpointMediaList).
		Register(api.MutationMediaDelete, api.EndpointMediaList)
}

func listKey(userID string) query.Key {
	return query.NewKey(api.EndpointMediaList, userID)
}

func itemKey(userID, id string) query.Key {
	return query.NewKey(api.EndpointMediaItem, userID, id)
}

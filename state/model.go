// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state

import (
	"github.com/juju/utils/v4"
)

// ModelType is the kind of substrate a model runs on.
type ModelType string

const (
	ModelKubernetes ModelType = "kubernetes"
	ModelLXD        ModelType = "lxd"
)

// CloudCredential is the credential material attached to a cloud
// spec.
type CloudCredential struct {
	// AuthType is the authentication type, e.g. "userpass".
	AuthType string

	// Attributes holds the credential values, e.g. access-key and
	// secret-key for AWS.
	Attributes map[string]string

	// Redacted lists attribute names whose values juju withholds.
	Redacted []string
}

// CloudSpec is the cloud metadata a trusted charm can read from
// credential-get.
type CloudSpec struct {
	// Type is the cloud type, e.g. "lxd".
	Type string

	// Name is the juju cloud name.
	Name string

	// Region is the cloud region, if any.
	Region string

	// Endpoint, IdentityEndpoint and StorageEndpoint are the cloud
	// API endpoints.
	Endpoint         string
	IdentityEndpoint string
	StorageEndpoint  string

	// Credential is the attached credential, if any.
	Credential *CloudCredential

	// CACertificates holds the CA certificates to trust.
	CACertificates []string

	// SkipTLSVerify disables TLS verification against the cloud.
	SkipTLSVerify bool

	// IsControllerCloud marks the cloud hosting the controller.
	IsControllerCloud bool
}

// CloudSpecArgs is the argument struct for NewCloudSpec. Type is
// required.
type CloudSpecArgs struct {
	Type              string
	Name              string
	Region            string
	Endpoint          string
	IdentityEndpoint  string
	StorageEndpoint   string
	Credential        *CloudCredential
	CACertificates    []string
	SkipTLSVerify     bool
	IsControllerCloud bool
}

// NewCloudSpec returns a cloud spec named "localhost" unless told
// otherwise.
func NewCloudSpec(args CloudSpecArgs) *CloudSpec {
	if args.Name == "" {
		args.Name = "localhost"
	}
	return &CloudSpec{
		Type:              args.Type,
		Name:              args.Name,
		Region:            args.Region,
		Endpoint:          args.Endpoint,
		IdentityEndpoint:  args.IdentityEndpoint,
		StorageEndpoint:   args.StorageEndpoint,
		Credential:        args.Credential,
		CACertificates:    args.CACertificates,
		SkipTLSVerify:     args.SkipTLSVerify,
		IsControllerCloud: args.IsControllerCloud,
	}
}

// Model is the juju model the charm is deployed in.
type Model struct {
	// Name is the model name.
	Name string

	// UUID is the model's unique identifier.
	UUID string

	// Type is the substrate kind.
	Type ModelType

	// CloudSpec carries cloud metadata, if the charm is trusted
	// with it.
	CloudSpec *CloudSpec
}

// ModelArgs is the argument struct for NewModel.
type ModelArgs struct {
	Name      string
	UUID      string
	Type      ModelType
	CloudSpec *CloudSpec
}

// NewModel returns a model defaulted the way juju would create one:
// a random name, a fresh UUID and a kubernetes substrate.
func NewModel(args ModelArgs) Model {
	if args.Name == "" {
		args.Name = utils.RandomString(20, append(utils.LowerAlpha, utils.Digits...))
	}
	if args.UUID == "" {
		args.UUID = utils.MustNewUUID().String()
	}
	if args.Type == "" {
		args.Type = ModelKubernetes
	}
	return Model{
		Name:      args.Name,
		UUID:      args.UUID,
		Type:      args.Type,
		CloudSpec: args.CloudSpec,
	}
}

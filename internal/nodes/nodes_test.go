// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/conductor-httpnodes/internal/nodes/hipaarequest"
	"github.com/tombee/conductor-httpnodes/internal/nodes/httprequest"
	"github.com/tombee/conductor-httpnodes/pkg/credential"
	"github.com/tombee/conductor-httpnodes/pkg/httpclient"
	"github.com/tombee/conductor-httpnodes/pkg/node"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(Options{HTTP: httpclient.DefaultConfig()})
	require.NoError(t, err)

	assert.Equal(t, []string{hipaarequest.Name, httprequest.Name}, reg.Names())
	assert.Equal(t, []string{credential.TypeGenericHTTPAuth, credential.TypeHTTPBin}, reg.CredentialNames())

	n, err := reg.Create(hipaarequest.Name)
	require.NoError(t, err)
	assert.Equal(t, hipaarequest.Name, n.Description().Name)

	ct, err := reg.Credential(credential.TypeGenericHTTPAuth)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bearerToken", "apiKey", "password"}, ct.SecretFields())
}

func TestRegister_Twice(t *testing.T) {
	reg := node.NewRegistry()
	require.NoError(t, Register(reg, Options{HTTP: httpclient.DefaultConfig()}))
	assert.Error(t, Register(reg, Options{HTTP: httpclient.DefaultConfig()}))
}

func TestNewRegistry_InvalidHTTPConfig(t *testing.T) {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = -1
	reg, err := NewRegistry(Options{HTTP: cfg})
	require.NoError(t, err)

	_, err = reg.Create(httprequest.Name)
	assert.Error(t, err)
}

// Copyright 2025 Google LLC
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

package gcs

import (
	"context"
	"net/url"
	"testing"

	"github.com/fsouza/fake-gcs-server/fakestorage"
	"github.com/googlecloudplatform/rangecache/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testBucket     = "test_bucket"
	testObject     = "data/blob.bin"
	testContent    = "0123456789abcdefghijklmnopqrstuvwxyz"
	testGeneration = 780
)

type objectTest struct {
	suite.Suite
	server *fakestorage.Server
}

func TestObjectSuite(t *testing.T) {
	suite.Run(t, new(objectTest))
}

func (t *objectTest) SetupTest() {
	var err error
	t.server, err = fakestorage.NewServerWithOptions(fakestorage.Options{
		InitialObjects: []fakestorage.Object{
			{
				ObjectAttrs: fakestorage.ObjectAttrs{
					BucketName: testBucket,
					Name:       testObject,
					Generation: testGeneration,
				},
				Content: []byte(testContent),
			},
		},
		NoListener: true,
	})
	require.NoError(t.T(), err)
}

func (t *objectTest) TearDownTest() {
	t.server.Stop()
}

func (t *objectTest) open() storage.Object {
	obj, err := Open(context.Background(), t.server.Client(), testBucket, testObject, "")
	require.NoError(t.T(), err)
	return obj
}

func (t *objectTest) TestOpenReportsNameAndSize() {
	obj := t.open()

	size, err := obj.Size(context.Background())

	require.NoError(t.T(), err)
	assert.Equal(t.T(), int64(len(testContent)), size)
	assert.Equal(t.T(), "gs://test_bucket/data/blob.bin", obj.Name())
	assert.NoError(t.T(), obj.Close())
}

func (t *objectTest) TestOpenMissingObject() {
	_, err := Open(context.Background(), t.server.Client(), testBucket, "missing", "")

	var nfe *storage.NotFoundError
	assert.ErrorAs(t.T(), err, &nfe)
}

func (t *objectTest) TestReadRange() {
	obj := t.open()

	data, err := obj.ReadRange(context.Background(), 10, 6)

	require.NoError(t.T(), err)
	assert.Equal(t.T(), "abcdef", string(data))
}

func (t *objectTest) TestReadRangeZeroLength() {
	obj := t.open()

	data, err := obj.ReadRange(context.Background(), 3, 0)

	require.NoError(t.T(), err)
	assert.Empty(t.T(), data)
}

func (t *objectTest) TestReadRangePastEnd() {
	obj := t.open()

	_, err := obj.ReadRange(context.Background(), 30, 10)

	var sre *storage.ShortReadError
	require.ErrorAs(t.T(), err, &sre)
	assert.Equal(t.T(), int64(6), sre.Got)
}

func TestClientOptions(t *testing.T) {
	endpoint, err := url.Parse("http://localhost:9000/storage/v1/")
	require.NoError(t, err)

	assert.Empty(t, clientOptions(ClientConfig{}))
	assert.Len(t, clientOptions(ClientConfig{AnonymousAccess: true, KeyFile: "/tmp/key.json"}), 1)
	assert.Len(t, clientOptions(ClientConfig{CustomEndpoint: endpoint, AnonymousAccess: true, UserAgent: "rangecache"}), 3)
}

func TestNewClientWithAnonymousAccess(t *testing.T) {
	endpoint, err := url.Parse("http://localhost:9000/storage/v1/")
	require.NoError(t, err)

	client, err := NewClient(context.Background(), ClientConfig{
		CustomEndpoint:  endpoint,
		AnonymousAccess: true,
		MaxRetrySleep:   0,
		RetryMultiplier: 2,
	})

	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

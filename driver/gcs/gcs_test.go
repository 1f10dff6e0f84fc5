package gcs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	stderrs "errors"
	"net/http"
	"os"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/meta"
)

func TestNames(t *testing.T) {
	d := New(nil, nil, "/top/", 0, nil)
	f := meta.New("docs", "a.html", 3)
	f.Path = "docs/a.html"

	if diff := cmp.Diff("top/docs/a.html", d.objName(f.Path)); diff != "" {
		t.Errorf("object name mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("top/.hub/"+f.FID+"/00000000000000000020", d.partName(f, 20)); diff != "" {
		t.Errorf("part name mismatch (-want +got):\n%s", diff)
	}

	cases := []struct {
		name string
		rel  string
		ok   bool
	}{
		{"top/docs/a.html", "docs/a.html", true},
		{"top/", "", false},
		{"top/docs/", "", false},
		{"top/.hub/x/0", "", false},
		{"other/a.html", "", false},
	}
	for _, c := range cases {
		rel, ok := d.relName(c.name)
		if rel != c.rel || ok != c.ok {
			t.Errorf("relName(%s) = %s, %v; want %s, %v", c.name, rel, ok, c.rel, c.ok)
		}
	}
}

func TestClassify(t *testing.T) {
	var (
		se *driver.ServiceError
		de *driver.DriverError
		ta *driver.TryAgainError
	)
	if err := classify(&googleapi.Error{Code: http.StatusTooManyRequests}, "x"); !stderrs.As(err, &ta) {
		t.Errorf("429 gave %T, want *TryAgainError", err)
	}
	if err := classify(&googleapi.Error{Code: http.StatusBadGateway}, "x"); !stderrs.As(err, &ta) {
		t.Errorf("502 gave %T, want *TryAgainError", err)
	}
	if err := classify(storage.ErrObjectNotExist, "x"); !stderrs.As(err, &de) {
		t.Errorf("missing object gave %T, want *DriverError", err)
	}
	if err := classify(&googleapi.Error{Code: http.StatusForbidden}, "x"); !stderrs.As(err, &se) {
		t.Errorf("403 gave %T, want *ServiceError", err)
	}
	if err := classify(nil, "x"); err != nil {
		t.Errorf("nil gave %v", err)
	}
}

const (
	credsVar = "HUB_GCS_TESTING_CREDS"
	projVar  = "HUB_GCS_TESTING_PROJECT"
)

func TestDriver(t *testing.T) {
	var (
		creds     = os.Getenv(credsVar)
		projectID = os.Getenv(projVar)
	)
	if creds == "" || projectID == "" {
		t.Skipf("to run TestDriver, set %s to the name of a credentials file and %s to a project ID", credsVar, projVar)
	}

	var r [20]byte
	if _, err := rand.Read(r[:]); err != nil {
		t.Fatal(err)
	}
	bucketName := "hub-" + hex.EncodeToString(r[:])

	ctx := context.Background()

	client, err := storage.NewClient(ctx, option.WithCredentialsFile(creds))
	if err != nil {
		t.Fatal(err)
	}

	t.Logf("creating bucket %s in project %s", bucketName, projectID)

	bucket := client.Bucket(bucketName)
	if err = bucket.Create(ctx, projectID, nil); err != nil {
		t.Fatal(err)
	}

	d := New(client, bucket, "test", 0, nil)
	defer d.Close()

	f := meta.New("docs", "a.html", 11)
	f.Path = "docs/a.html"

	defer func() {
		d.DeleteFile(ctx, f)
		bucket.Delete(ctx)
	}()

	if err = d.StartUpload(ctx, f); err != nil {
		t.Fatal(err)
	}
	if err = d.UploadChunk(ctx, f, 0, []byte("hello ")); err != nil {
		t.Fatal(err)
	}
	if err = d.UploadChunk(ctx, f, 6, []byte("wor")); err != nil {
		t.Fatal(err)
	}
	if err = d.RestartUpload(ctx, f, 6); err != nil {
		t.Fatal(err)
	}
	if err = d.UploadChunk(ctx, f, 6, []byte("there")); err != nil {
		t.Fatal(err)
	}
	if err = d.EndUpload(ctx, f); err != nil {
		t.Fatal(err)
	}

	got, err := d.GetChunk(ctx, f, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("hello there", string(got)); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
	if f.Extra[GenerationKey] == "" {
		t.Error("generation not recorded")
	}
}

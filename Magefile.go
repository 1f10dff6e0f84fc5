//go:build mage
// +build mage

package main

import (
	"context"

	"github.com/bobg/mghash"
	"github.com/bobg/mghash/sqlite"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

var Default = Build

func Build() error {
	mg.Deps(Generate)
	return sh.Run(mg.GoCmd(), "build", "./...")
}

func Test() error {
	mg.Deps(Generate)
	args := []string{"test"}
	if mg.Verbose() {
		args = append(args, "-v")
	}
	args = append(args, "./...")
	return sh.Run(mg.GoCmd(), args...)
}

// Generate regenerates the protobuf messages and gRPC stubs
// of the store and router protocols.
func Generate(ctx context.Context) error {
	db, err := sqlite.Open(ctx, "hashdb.sqlite")
	if err != nil {
		return errors.Wrap(err, "opening hashdb.sqlite")
	}
	defer db.Close()

	store := mghash.JRule{
		Sources: []string{"kv/rpc/store.proto"},
		Targets: []string{"kv/rpc/store.pb.go", "kv/rpc/store_grpc.pb.go"},
		Command: []string{"protoc", "-Ikv/rpc", "--go_out=kv/rpc", "--go_opt=paths=source_relative", "--go-grpc_out=kv/rpc", "--go-grpc_opt=paths=source_relative", "kv/rpc/store.proto"},
	}
	router := mghash.JRule{
		Sources: []string{"router/rpc/router.proto"},
		Targets: []string{"router/rpc/router.pb.go", "router/rpc/router_grpc.pb.go"},
		Command: []string{"protoc", "-Irouter/rpc", "--go_out=router/rpc", "--go_opt=paths=source_relative", "--go-grpc_out=router/rpc", "--go-grpc_opt=paths=source_relative", "router/rpc/router.proto"},
	}

	mg.CtxDeps(
		ctx,
		&mghash.Fn{DB: db, Rule: store},
		&mghash.Fn{DB: db, Rule: router},
	)

	return nil
}

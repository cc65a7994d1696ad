// Copyright 2025 The Rivaas Authors
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

package resource

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// defaultServerTimeouts returns the hardened default timeout configuration.
func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// Serve runs the dispatcher as the root handler of an HTTP server on addr,
// with the timeouts from WithServerTimeouts (or hardened defaults) and
// optional h2c from WithH2C.
//
// For anything beyond a single root controller, compose dispatchers under
// your own mux and run your own server; the dispatcher is a plain
// http.Handler.
//
// Example:
//
//	d := users.MustCompile()
//	log.Fatal(d.Serve(":8080"))
func (d *Dispatcher) Serve(addr string) error {
	h := http.Handler(d)

	if d.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
	}

	return d.server(addr, h).ListenAndServe()
}

// ServeTLS is like Serve but with TLS. H2C does not apply: with TLS the
// standard library negotiates HTTP/2 via ALPN.
func (d *Dispatcher) ServeTLS(addr, certFile, keyFile string) error {
	return d.server(addr, d).ListenAndServeTLS(certFile, keyFile)
}

func (d *Dispatcher) server(addr string, h http.Handler) *http.Server {
	timeouts := d.timeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
}

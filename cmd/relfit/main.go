// SPDX-License-Identifier: MIT

// Command relfit fits lifetime distributions to censored failure data.
//
//	relfit models
//	relfit fit --model Weibull_2P -f job.yaml
//	relfit everything -f job.yaml
//	relfit mixture -f job.yaml
//	relfit cr -f job.yaml
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Package config loads the two YAML files every connector reads at start:
// config.yaml, which says where to publish, and manifest.yaml, which says
// who is publishing.
//
// config.yaml is taken from the first readable file among
//
//	./config.yaml
//	$CONFIGPATH/config.yaml        (CONFIGPATH defaults to ~/.config)
//	$CONFIGPATH/nakji/config.yaml
//	/etc/nakji/config.yaml
//
// and must contain at least
//
//	kafka:
//	  url: localhost:9092
//	  env: staging
//	protoregistry:
//	  host: http://protoregistry:8080
//
// Any other section is left for the connector itself and read with Sub or
// Decode:
//
//	var eth struct {
//	    RPC string `yaml:"rpc"`
//	}
//	if err := cfg.Decode("ethereum", &eth); err != nil {
//	    return err
//	}
//
// manifest.yaml names the connector:
//
//	name: ethereum
//	author: nakji
//	version: 0.1.0
package config

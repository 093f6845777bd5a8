/*
Package client provides the manager-style API for talking to a safety center
over NATS, plus the client runners that live on the safety-source side:
[SourceRunner] (respond to refresh broadcasts), [HealthClient] (built-in
device-health source), and [NotifierClient] (message delivery for critical
issues).

Calls that touch gated subjects take a creds string: a bearer token minted by
the store (see the auth package). Pushing source data needs a send token;
reading aggregated data, refreshing, and dismissing need a manage token.
*/
package client

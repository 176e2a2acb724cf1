// Package security builds TLS settings for outbound connections, such as
// the diarization provider behind a private CA or a gateway that wants a
// client certificate.
//
//	tls:
//	  ca_file: /etc/voicemap/ca.pem
//	  min_version: "1.3"
package security

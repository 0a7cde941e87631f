/*
Package sites provides the capability registry: the fixed feature
vector describing what each supported content site can do.

# Overview

Every site is described by one flat Capabilities record: volume
structure, inline image support, login requirement, search mode, and
whether chapter payloads are cipher-wrapped. The registry is built once
at startup from the builtin table plus an optional overlay directory,
then serves concurrent lookups without locking.

# Capability Vector

The requires_decryption flag is authoritative: consumers route a
chapter through the unlock bridge exactly when it is true, and must
never attempt decryption otherwise. Lookup of an unknown site always
fails with ErrUnknownSite; there is no default vector.

# Overlay Files

Records may be provided as .yaml, .yml, .json, or .toml files:

	site_id: qidian
	host: vipreader.qidian.com
	supports_volumes: native
	supports_images: native
	login_requirement: required
	search_support: internal
	requires_decryption: true

A record whose site_id matches a builtin row replaces it.
*/
package sites

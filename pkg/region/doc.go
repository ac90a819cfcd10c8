/*
Package region picks the display language of a client.

A Detector geolocates an IP through a public lookup service (ipwho.is by
default). LocaleFor maps the country to a language: Spanish for the
Spanish-speaking allow-set, English otherwise. A Resolver combines both with a
ports.PreferenceStore so that a detected or explicitly chosen language sticks to
the client for the store's retention period.

Detection failures are never surfaced to callers: they are logged and the
default language is used.
*/
package region

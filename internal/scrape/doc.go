/*
Package scrape provides HTML parsing helpers for site sources: charset
detection and UTF-8 conversion, goquery/xpath loading, chapter body
extraction, link and image harvesting, sanitization, and cached cleanup
regexps.

Most supported sites serve GBK-family encodings without declaring them,
so every load path runs chardet first and converts before parsing.
*/
package scrape

// Package tavily wraps the Tavily search endpoint, used both to discover
// related videos (domain-restricted results) and to obtain a synthesized
// answer describing a video's main topics.
package tavily

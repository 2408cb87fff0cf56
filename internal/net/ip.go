package net

import (
	"fmt"
	"log"
	"net"
	"strconv"
)

// Scheme prefixes share links opened by the desktop client.
const Scheme = "canvasboard://"

// OutgoingIP finds the LAN address peers should use to reach this host.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return firstIPv4()
	}
	defer conn.Close()
	if a, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return a.IP.String()
	}
	return firstIPv4()
}

// firstIPv4 is used on networks without a default route.
func firstIPv4() string {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4().String()
			}
		}
	}
	log.Println("[SERVER] No suitable local IP found, share link uses loopback")
	return "127.0.0.1"
}

// ShareLink builds a link for a session hosted at host:port. An empty
// sessionID links to the server only.
func ShareLink(host string, port int, sessionID string) string {
	link := Scheme + net.JoinHostPort(host, strconv.Itoa(port))
	if sessionID != "" {
		link += "/" + sessionID
	}
	return link
}

// ParseShareLink returns the server base URL and optional session ID carried
// by a share link.
func ParseShareLink(link string) (baseURL, sessionID string, err error) {
	if len(link) <= len(Scheme) || link[:len(Scheme)] != Scheme {
		return "", "", fmt.Errorf("not a %s link: %q", Scheme, link)
	}
	rest := link[len(Scheme):]
	hostport := rest
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			hostport, sessionID = rest[:i], rest[i+1:]
			break
		}
	}
	if _, _, err := net.SplitHostPort(hostport); err != nil {
		return "", "", fmt.Errorf("bad host in link %q: %w", link, err)
	}
	return "http://" + hostport, sessionID, nil
}

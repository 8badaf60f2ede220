package net

import (
	"fmt"
	"log"
	"net"
	"strings"
)

// LinkScheme prefixes share links that open a board.
const LinkScheme = "sketchboard://"

// OutgoingIP finds the preferred local IP address for the host to share.
func OutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// no route out, look at the interfaces instead
		return localIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// localIPFallback is used on networks without internet access.
func localIPFallback() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4().String(), nil
			}
		}
	}
	log.Println("[NET] No suitable local IP found, share links will only work on this machine")
	return "127.0.0.1", nil
}

// ShareLink builds the link other boards join with.
func ShareLink(ip string, port int) string {
	return fmt.Sprintf("%s%s", LinkScheme, net.JoinHostPort(ip, fmt.Sprint(port)))
}

// ParseLink extracts host:port from a share link.
func ParseLink(link string) (string, bool) {
	addr, ok := strings.CutPrefix(link, LinkScheme)
	if !ok {
		return "", false
	}
	addr = strings.TrimSuffix(addr, "/")
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", false
	}
	return addr, true
}

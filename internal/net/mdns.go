package net

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"

	"PDFMarkup/internal/logging"
)

// ServiceType is the mDNS service the bridge is published under.
const ServiceType = "_pdfmarkup._tcp"

// Advertise publishes the bridge on port over mDNS. Shut the returned server
// down to withdraw it.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, []string{"PDFMarkup bridge"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	logging.For("mdns").Info("advertising bridge", "service", ServiceType, "port", port)
	return server, nil
}

// Browse reports every bridge found on the LAN as host:port until the lookup
// finishes.
func Browse(found func(addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port))
		}
	}()
	err := mdns.Lookup(ServiceType, entries)
	close(entries)
	<-done
	return err
}

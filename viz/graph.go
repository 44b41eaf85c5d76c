// ABOUTME: GraphViz outreach network generation
// ABOUTME: Draws clients, leads, and outreach channels as a DOT graph
package viz

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
)

type GraphGenerator struct {
	clients  *db.ClientRepository
	leads    *db.LeadRepository
	outreach *db.OutreachRepository
}

func NewGraphGenerator(database *sql.DB) *GraphGenerator {
	return &GraphGenerator{
		clients:  db.NewClientRepository(database),
		leads:    db.NewLeadRepository(database),
		outreach: db.NewOutreachRepository(database),
	}
}

// edgeKey groups outreach between the same endpoints over the same channel.
type edgeKey struct {
	from, to string
	channel  models.OutreachType
}

type edgeStats struct {
	total, completed int
}

// GenerateOutreachGraph draws every client (or just clientID when set), the
// leads it has reached, and one edge per channel labelled with counts.
// Outreach without a lead points at a shared channel node.
func (g *GraphGenerator) GenerateOutreachGraph(ctx context.Context, clientID *uuid.UUID) (string, error) {
	var clients []models.Client
	if clientID != nil {
		c, err := g.clients.Get(ctx, *clientID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch client: %w", err)
		}
		if c == nil {
			return "", fmt.Errorf("client not found: %s", clientID)
		}
		clients = []models.Client{*c}
	} else {
		var err error
		if clients, err = g.clients.List(ctx, db.ClientFilter{}); err != nil {
			return "", fmt.Errorf("failed to fetch clients: %w", err)
		}
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel("Outreach Network")
	graph.SetRankDir(cgraph.LRRank)

	nodes := make(map[string]*cgraph.Node)
	edges := make(map[edgeKey]*edgeStats)
	var order []edgeKey

	for _, client := range clients {
		cid := "client_" + client.ID.String()[:8]
		node, err := graph.CreateNodeByName(cid)
		if err != nil {
			return "", fmt.Errorf("failed to create client node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n(%s)", client.Name, client.Status))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightblue")
		nodes[cid] = node

		records, err := g.outreach.ListByClient(ctx, client.ID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch outreach: %w", err)
		}
		for _, o := range records {
			to, err := g.targetNode(ctx, graph, nodes, o)
			if err != nil {
				return "", err
			}
			key := edgeKey{from: cid, to: to, channel: o.Type}
			stats, ok := edges[key]
			if !ok {
				stats = &edgeStats{}
				edges[key] = stats
				order = append(order, key)
			}
			stats.total++
			if o.Status == models.OutreachCompleted {
				stats.completed++
			}
		}
	}

	for _, key := range order {
		stats := edges[key]
		edge, err := graph.CreateEdgeByName(string(key.channel), nodes[key.from], nodes[key.to])
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetLabel(fmt.Sprintf("%s %d/%d", key.channel.Label(), stats.completed, stats.total))
		if stats.completed == 0 {
			edge.SetStyle("dashed")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

// targetNode returns the node name an outreach points at, creating it on
// first use.
func (g *GraphGenerator) targetNode(ctx context.Context, graph *cgraph.Graph, nodes map[string]*cgraph.Node, o models.Outreach) (string, error) {
	if o.LeadID != nil {
		name := "lead_" + o.LeadID.String()[:8]
		if _, ok := nodes[name]; ok {
			return name, nil
		}
		label := "Unknown lead"
		if lead, err := g.leads.Get(ctx, *o.LeadID); err != nil {
			return "", fmt.Errorf("failed to fetch lead: %w", err)
		} else if lead != nil {
			label = fmt.Sprintf("%s\n%s", lead.Name, lead.Status)
		}
		node, err := graph.CreateNodeByName(name)
		if err != nil {
			return "", fmt.Errorf("failed to create lead node: %w", err)
		}
		node.SetLabel(label)
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor("lightgreen")
		nodes[name] = node
		return name, nil
	}

	name := "channel_" + string(o.Type)
	if _, ok := nodes[name]; ok {
		return name, nil
	}
	node, err := graph.CreateNodeByName(name)
	if err != nil {
		return "", fmt.Errorf("failed to create channel node: %w", err)
	}
	node.SetLabel(o.Type.Label())
	node.SetShape("diamond")
	node.SetStyle("filled")
	node.SetFillColor("lightyellow")
	nodes[name] = node
	return name, nil
}

package lsa

import "github.com/ospf6mdr/ospf6d/internal/router6"

// Key identifies one LSA instance the way RFC 5340 does: type, link-state
// id, and advertising router. The link-state id for router-LSAs is
// conventionally 0; for network-LSAs and link-LSAs it is the originating
// interface id.
type Key struct {
	Type      Type
	LinkState uint32
	AdvRouter router6.ID
}

// DB is the read interface the SPF engine and MDR engine need onto an
// area's LSDB. The real LSDB -- origination, aging, flooding, retransmit
// bookkeeping -- is the external collaborator named in spec.md §1; DB is
// only the lookup surface those two algorithms actually call.
type DB interface {
	RouterLSA(advRouter router6.ID) (RouterLSA, bool)
	NetworkLSA(advRouter router6.ID, interfaceID uint32) (NetworkLSA, bool)
	LinkLSA(advRouter router6.ID, interfaceID uint32) (LinkLSA, bool)
}

// MemDB is an in-memory DB, used by tests and by a standalone ospf6d run
// that has not yet wired a real LSDB collaborator. It is not a substitute
// for RFC 5340 aging/flooding; it exists so internal/spf and internal/mdr
// are independently testable without that external machinery.
type MemDB struct {
	routers  map[router6.ID]RouterLSA
	networks map[Key]NetworkLSA
	links    map[Key]LinkLSA
}

// NewMemDB creates an empty in-memory LSDB.
func NewMemDB() *MemDB {
	return &MemDB{
		routers:  make(map[router6.ID]RouterLSA),
		networks: make(map[Key]NetworkLSA),
		links:    make(map[Key]LinkLSA),
	}
}

func (db *MemDB) PutRouterLSA(l RouterLSA) { db.routers[l.AdvRouter] = l }

func (db *MemDB) PutNetworkLSA(l NetworkLSA) {
	db.networks[Key{Type: TypeNetwork, LinkState: l.InterfaceID, AdvRouter: l.AdvRouter}] = l
}

func (db *MemDB) PutLinkLSA(l LinkLSA) {
	db.links[Key{Type: TypeLink, LinkState: l.InterfaceID, AdvRouter: l.AdvRouter}] = l
}

func (db *MemDB) RouterLSA(advRouter router6.ID) (RouterLSA, bool) {
	l, ok := db.routers[advRouter]
	return l, ok
}

func (db *MemDB) NetworkLSA(advRouter router6.ID, interfaceID uint32) (NetworkLSA, bool) {
	l, ok := db.networks[Key{Type: TypeNetwork, LinkState: interfaceID, AdvRouter: advRouter}]
	return l, ok
}

func (db *MemDB) LinkLSA(advRouter router6.ID, interfaceID uint32) (LinkLSA, bool) {
	l, ok := db.links[Key{Type: TypeLink, LinkState: interfaceID, AdvRouter: advRouter}]
	return l, ok
}
